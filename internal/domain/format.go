package domain

import (
	"path/filepath"
	"strings"
)

type FormatKind int

const (
	FormatUnknown FormatKind = iota
	FormatTar
	FormatZip
	FormatRar
	FormatSevenZip
	FormatGzip
	FormatTarGz
	FormatTarSevenZip
	FormatPlanned
)

func (k FormatKind) String() string {
	switch k {
	case FormatTar:
		return "tar"
	case FormatZip:
		return "zip"
	case FormatRar:
		return "rar"
	case FormatSevenZip:
		return "7z"
	case FormatGzip:
		return "gzip"
	case FormatTarGz:
		return "tar.gz"
	case FormatTarSevenZip:
		return "tar.7z"
	case FormatPlanned:
		return "planned"
	default:
		return "unknown"
	}
}

// ArchiveFormat is the format derived from an archive's file name. Ext is the
// matched suffix without its leading dot; for unknown names it is the trailing
// extension, if any.
type ArchiveFormat struct {
	Kind FormatKind
	Ext  string
}

func (f ArchiveFormat) String() string {
	switch f.Kind {
	case FormatPlanned, FormatUnknown:
		return f.Kind.String() + "(" + f.Ext + ")"
	default:
		return f.Kind.String()
	}
}

// Supported reports whether an extractor exists for the format.
func (f ArchiveFormat) Supported() bool {
	return f.Kind != FormatUnknown && f.Kind != FormatPlanned
}

// SingleStream reports whether the format decodes to one file rather than a tree.
func (f ArchiveFormat) SingleStream() bool {
	return f.Kind == FormatGzip
}

type FormatEntry struct {
	Suffix string
	Kind   FormatKind
}

// Compound suffixes come first so "x.tar.gz" never matches ".gz".
var formatTable = []FormatEntry{
	{".tar.gz", FormatTarGz},
	{".tar.7z", FormatTarSevenZip},
	{".tar.bz2", FormatPlanned},
	{".tar.xz", FormatPlanned},
	{".tar.lz4", FormatPlanned},
	{".tar.zst", FormatPlanned},
	{".tgz", FormatTarGz},
	{".tar", FormatTar},
	{".zip", FormatZip},
	{".rar", FormatRar},
	{".7z", FormatSevenZip},
	{".gz", FormatGzip},
	{".tbz2", FormatPlanned},
	{".tbz", FormatPlanned},
	{".bz2", FormatPlanned},
	{".txz", FormatPlanned},
	{".xz", FormatPlanned},
	{".tlz4", FormatPlanned},
	{".lz4", FormatPlanned},
	{".tzst", FormatPlanned},
	{".zst", FormatPlanned},
}

func ResolveFormat(name string) ArchiveFormat {
	lower := strings.ToLower(filepath.Base(name))

	for _, e := range formatTable {
		if strings.HasSuffix(lower, e.Suffix) && len(lower) > len(e.Suffix) {
			return ArchiveFormat{Kind: e.Kind, Ext: e.Suffix[1:]}
		}
	}

	return ArchiveFormat{Kind: FormatUnknown, Ext: strings.TrimPrefix(filepath.Ext(lower), ".")}
}

// Formats returns a copy of the suffix table in match order.
func Formats() []FormatEntry {
	out := make([]FormatEntry, len(formatTable))
	copy(out, formatTable)
	return out
}

// Extensions lists every recognised suffix, compound ones first.
func Extensions() []string {
	exts := make([]string, 0, len(formatTable))
	for _, e := range formatTable {
		exts = append(exts, e.Suffix)
	}
	return exts
}
