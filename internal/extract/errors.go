package extract

import (
	"errors"
	"fmt"
)

// NotReadableError indicates the file could not be opened or decoded at all.
type NotReadableError struct {
	Path string
	Err  error
}

func (e *NotReadableError) Error() string {
	return fmt.Sprintf("file not readable: %s: %v", e.Path, e.Err)
}

func (e *NotReadableError) Unwrap() error { return e.Err }

// UnsupportedFormatError indicates the file extension is neither .pdf nor .txt.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q: %s", e.Ext, e.Path)
}

// EmptyTextError indicates extraction succeeded mechanically but produced no
// usable text (e.g., an image-only PDF).
type EmptyTextError struct {
	Path string
}

func (e *EmptyTextError) Error() string {
	return fmt.Sprintf("no extractable text: %s", e.Path)
}

// IsNotReadable reports whether err (or any error in its chain) is a
// NotReadableError.
func IsNotReadable(err error) bool {
	var e *NotReadableError
	return errors.As(err, &e)
}

// IsUnsupportedFormat reports whether err is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var e *UnsupportedFormatError
	return errors.As(err, &e)
}

// IsEmptyText reports whether err is an EmptyTextError.
func IsEmptyText(err error) bool {
	var e *EmptyTextError
	return errors.As(err, &e)
}
