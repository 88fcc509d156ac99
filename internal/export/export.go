// Package export writes captures and statistics as JSON or CSV text.
package export

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"gocloud.dev/blob"

	"github.com/getsentry/framestats/internal/aggregate"
	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/sample"
	"github.com/getsentry/framestats/internal/storageutil"
)

const csvHeader = "Frame;CPU;GPU; PluginRenderTime\n"

// ParseFormat returns the format named name.
func ParseFormat(name string) (sample.Format, error) {
	switch f := sample.Format(strings.ToLower(name)); f {
	case sample.FormatJSON, sample.FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", errorutil.ErrInvalidOptions, name)
	}
}

// FormatFromPath returns the format matching the extension of path, JSON if
// it has none we know.
func FormatFromPath(path string) sample.Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return sample.FormatCSV
	}
	return sample.FormatJSON
}

// ReplaceExtension returns path with its extension set to format.
func ReplaceExtension(path string, format sample.Format) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + string(format)
}

// Capture writes cs to w in the capture set's format.
func Capture(w io.Writer, cs *sample.CaptureSet) error {
	if cs.Format == sample.FormatCSV {
		return CSV(w, cs)
	}
	return JSON(w, cs)
}

// JSON writes cs as a JSON document.
func JSON(w io.Writer, cs *sample.CaptureSet) error {
	return json.NewEncoder(w).Encode(cs)
}

// Statistics writes stats as a JSON array.
func Statistics(w io.Writer, stats []aggregate.FunctionStatistic) error {
	if stats == nil {
		stats = []aggregate.FunctionStatistic{}
	}
	return json.NewEncoder(w).Encode(stats)
}

// Table writes stats as aligned text, one row per function under the headers
// of columns.
func Table(w io.Writer, columns []column.Column, stats []aggregate.FunctionStatistic) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, c := range columns {
		if i > 0 {
			_, _ = io.WriteString(tw, "\t")
		}
		_, _ = io.WriteString(tw, c.Header())
	}
	_, _ = io.WriteString(tw, "\n")
	for _, s := range stats {
		for i, c := range columns {
			if i > 0 {
				_, _ = io.WriteString(tw, "\t")
			}
			_, _ = io.WriteString(tw, s.Value(c))
		}
		_, _ = io.WriteString(tw, "\n")
	}
	return tw.Flush()
}

// CSV writes one line per frame with its CPU and GPU time. Frames are
// numbered from 0 in capture order.
func CSV(w io.Writer, cs *sample.CaptureSet) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(csvHeader)
	var buf []byte
	for i, fr := range cs.Frames {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(i), 10)
		buf = append(buf, ';')
		buf = strconv.AppendFloat(buf, fr.FrameTimeCPU, 'f', -1, 64)
		buf = append(buf, ';')
		buf = strconv.AppendFloat(buf, fr.FrameTimeGPU, 'f', -1, 64)
		buf = append(buf, ';', '\n')
		_, _ = bw.Write(buf)
	}
	return bw.Flush()
}

// WriteFile writes data to path. An existing file is only replaced when
// overwrite is set.
func WriteFile(path string, data []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", errorutil.ErrFileExists, path)
		}
		return err
	}
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteBucket writes data to key in the bucket, lz4 compressed when compress
// is set.
func WriteBucket(ctx context.Context, bucket *blob.Bucket, key string, data []byte, compress bool) error {
	return storageutil.Write(ctx, bucket, key, data, compress)
}

// Encode renders cs in its format.
func Encode(cs *sample.CaptureSet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Capture(&buf, cs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
