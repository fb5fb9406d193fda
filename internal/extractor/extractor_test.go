package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcutter/keeper/internal/domain"
)

func TestFor(t *testing.T) {
	e := New(Config{})

	tests := []struct {
		name string
		want domain.Extractor
	}{
		{"a.tar", e.tar},
		{"a.zip", e.zip},
		{"a.rar", e.rar},
		{"a.7z", e.sevenZip},
		{"a.gz", e.gzip},
		{"a.tar.gz", e.tarGz},
		{"a.tgz", e.tarGz},
		{"a.tar.7z", e.tar7z},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.For(domain.ResolveFormat(tt.name))
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestForRejectsUnsupported(t *testing.T) {
	e := New(Config{})

	_, err := e.For(domain.ResolveFormat("a.tar.xz"))
	assert.ErrorIs(t, err, domain.ErrPlannedNotImplemented)

	_, err = e.For(domain.ResolveFormat("a.docx"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestNewDefaults(t *testing.T) {
	e := New(Config{})
	assert.Equal(t, defaultBufferSize, e.tar.bufSize)
	assert.NotNil(t, e.tar7z.log)
	assert.Same(t, e.tar, e.tar7z.tar)
}
