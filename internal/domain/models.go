package domain

import (
	"os"
	"time"
)

// Request describes one extraction. It is built once by the caller and not
// modified afterwards.
type Request struct {
	ArchivePath     string
	DestinationHint string
	DryRun          bool
	ListOnly        bool
	SHA256          string
}

type ExtractOptions struct {
	ListOnly bool
}

// Destination is where a request writes. Root is always a directory; File is
// set only for single-stream formats.
type Destination struct {
	Root    string
	File    string
	Created bool
	Planned bool
}

type Entry struct {
	Name    string
	Path    string
	Size    int64
	Mode    os.FileMode
	HasMode bool
	Dir     bool
	Symlink string
	// Hardlink names the earlier member this entry shares content with.
	Hardlink string
	Comment  string
}

type Skipped struct {
	Name   string
	Reason string
}

// Outcome reports what an extraction wrote (or, when listing, would write).
type Outcome struct {
	Archive     string
	Format      ArchiveFormat
	Destination Destination
	DryRun      bool
	Listed      bool
	Entries     []Entry
	Skipped     []Skipped
	Duration    time.Duration
}

func (o *Outcome) Add(e Entry) {
	o.Entries = append(o.Entries, e)
}

func (o *Outcome) Skip(name, reason string) {
	o.Skipped = append(o.Skipped, Skipped{Name: name, Reason: reason})
}

func (o *Outcome) TotalSize() int64 {
	var n int64
	for _, e := range o.Entries {
		n += e.Size
	}
	return n
}

type FetchResult struct {
	URL   string
	Path  string
	Error error
}
