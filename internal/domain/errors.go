package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedFormat          = errors.New("unsupported archive format")
	ErrPlannedNotImplemented      = errors.New("archive format planned but not implemented")
	ErrInvalidDestination         = errors.New("invalid destination")
	ErrArchiveNotFound            = errors.New("archive not found")
	ErrNestedArchiveMissingMember = errors.New("nested archive has no tar member")
	ErrIO                         = errors.New("i/o failure")
)

// ExtractError carries the kind of failure (one of the sentinels above), the
// operation and path involved, and the underlying cause when there is one.
// Both Kind and Err are reachable through errors.Is and errors.As.
type ExtractError struct {
	Kind error
	Op   string
	Path string
	Ext  string
	Err  error
}

func (e *ExtractError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Ext != "" {
		b.WriteString(" ." + e.Ext)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExtractError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func IOError(op, path string, err error) error {
	return &ExtractError{Kind: ErrIO, Op: op, Path: path, Err: err}
}

func FormatError(name string, f ArchiveFormat) error {
	kind := ErrUnsupportedFormat
	if f.Kind == FormatPlanned {
		kind = ErrPlannedNotImplemented
	}
	return &ExtractError{Kind: kind, Op: "resolve", Path: name, Ext: f.Ext}
}
