package errorutil

import "errors"

// ErrDataIntegrity is a base error type to use for failures that are due to
// unrecoverable data integrity issues.
var ErrDataIntegrity = errors.New("data integrity error")

// ErrInvalidRange is returned when a frame range is inverted or falls outside
// of what the frame source can provide.
var ErrInvalidRange = errors.New("invalid frame range")

// ErrMissingFrame is returned by a frame source that has no record for a
// frame index inside its valid range.
var ErrMissingFrame = errors.New("missing frame")

// ErrParse is the base error for metric values not matching the encoding of
// their column.
var ErrParse = errors.New("parse error")

// ErrInvalidOptions is returned when aggregation options are inconsistent.
var ErrInvalidOptions = errors.New("invalid options")

// ErrFileExists is returned when an export would overwrite an existing file.
var ErrFileExists = errors.New("file already exists")
