// Package units converts encoded metric values to numbers and back.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/errorutil"
)

// ParseError reports a value that does not match the encoding of its column.
type ParseError struct {
	Text   string
	Kind   column.Kind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %q is not a %s value: %s", e.Text, e.Kind, e.Reason)
}

// Is makes errors.Is(err, errorutil.ErrParse) hold for every ParseError.
func (e *ParseError) Is(target error) bool {
	return target == errorutil.ErrParse
}

// byteUnits are binary multiples, 1 KB is 1024 B.
var byteUnits = []struct {
	symbol string
	size   float64
}{
	{"B", 1},
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"TB", 1 << 40},
	{"PB", 1 << 50},
}

// Parse returns the numeric value of text encoded as kind. Byte sizes are
// returned as a number of bytes.
func Parse(text string, kind column.Kind) (float64, error) {
	switch kind {
	case column.Numeric, column.Percentage:
		s := strings.TrimSuffix(strings.TrimSpace(text), "%")
		return parseFloat(text, kind, s)
	case column.ByteSize:
		return parseByteSize(text)
	default:
		return 0, &ParseError{Text: text, Kind: kind, Reason: "column is not numeric"}
	}
}

// Format encodes value the way kind values are displayed. Numeric and
// percentage values get two decimals. Byte sizes use the largest unit not
// exceeding the value and keep every significant digit, so parsing the
// result gives back value exactly.
func Format(value float64, kind column.Kind) string {
	if kind == column.ByteSize {
		return formatByteSize(value)
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func parseByteSize(text string) (float64, error) {
	s := strings.TrimSpace(text)
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return 0, &ParseError{Text: text, Kind: column.ByteSize, Reason: "missing unit"}
	}
	number, symbol := s[:i], s[i+1:]
	for _, u := range byteUnits {
		if u.symbol != symbol {
			continue
		}
		v, err := parseFloat(text, column.ByteSize, number)
		if err != nil {
			return 0, err
		}
		return v * u.size, nil
	}
	return 0, &ParseError{Text: text, Kind: column.ByteSize, Reason: fmt.Sprintf("unknown unit %q", symbol)}
}

func parseFloat(text string, kind column.Kind, s string) (float64, error) {
	if s == "" {
		return 0, &ParseError{Text: text, Kind: kind, Reason: "no number"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Text: text, Kind: kind, Reason: "no number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Text: text, Kind: kind, Reason: "not a finite number"}
	}
	return v, nil
}

func formatByteSize(bytes float64) string {
	magnitude := math.Abs(bytes)
	i := 0
	for i < len(byteUnits)-1 && magnitude >= byteUnits[i+1].size {
		i++
	}
	s := strconv.FormatFloat(bytes/byteUnits[i].size, 'f', -1, 64)
	if i > 0 && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " " + byteUnits[i].symbol
}
