package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/disclosurelab/esgscore/internal/config"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"report.pdf", FormatPDF},
		{"report.PDF", FormatPDF},
		{"600519-2022-茅台.txt", FormatTXT},
		{"report.TXT", FormatTXT},
		{"report.doc", FormatUnknown},
		{"report", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.path))
		})
	}
}

func TestNewProviderSelection(t *testing.T) {
	for _, provider := range []string{"", "native", "pdftotext"} {
		_, err := New(config.ExtractConfig{PDFProvider: provider})
		assert.NoError(t, err, "provider %q", provider)
	}

	_, err := New(config.ExtractConfig{PDFProvider: "mistral"})
	assert.Error(t, err)
}

func TestReadTXT(t *testing.T) {
	t.Run("utf8", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "r.txt")
		require.NoError(t, os.WriteFile(path, []byte("本报告遵循GRI标准"), 0o644))

		text, err := ReadTXT(path)
		require.NoError(t, err)
		assert.Equal(t, "本报告遵循GRI标准", text)
	})

	t.Run("gbk fallback", func(t *testing.T) {
		gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("独立鉴证报告"))
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "gbk.txt")
		require.NoError(t, os.WriteFile(path, gbk, 0o644))

		text, err := ReadTXT(path)
		require.NoError(t, err)
		assert.Equal(t, "独立鉴证报告", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadTXT(filepath.Join(t.TempDir(), "nope.txt"))
		require.Error(t, err)
		assert.True(t, IsNotReadable(err))
	})
}

func TestExtractDispatch(t *testing.T) {
	ex, err := New(config.ExtractConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("txt success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(path, []byte("GRI Standards"), 0o644))

		text, err := ex.Extract(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "GRI Standards", text)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ex.Extract(ctx, "report.docx")
		require.Error(t, err)
		assert.True(t, IsUnsupportedFormat(err))
	})

	t.Run("whitespace-only text is empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blank.txt")
		require.NoError(t, os.WriteFile(path, []byte("  \n\t \n"), 0o644))

		_, err := ex.Extract(ctx, path)
		require.Error(t, err)
		assert.True(t, IsEmptyText(err))
	})

	t.Run("corrupt pdf is not readable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk.pdf")
		require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

		_, err := ex.Extract(ctx, path)
		require.Error(t, err)
		assert.True(t, IsNotReadable(err))
	})
}

func TestErrorClassifiers(t *testing.T) {
	notReadable := &NotReadableError{Path: "x", Err: os.ErrPermission}
	unsupported := &UnsupportedFormatError{Path: "x", Ext: ".doc"}
	empty := &EmptyTextError{Path: "x"}

	assert.True(t, IsNotReadable(notReadable))
	assert.False(t, IsNotReadable(unsupported))
	assert.True(t, IsUnsupportedFormat(unsupported))
	assert.False(t, IsUnsupportedFormat(empty))
	assert.True(t, IsEmptyText(empty))
	assert.False(t, IsEmptyText(notReadable))

	assert.ErrorIs(t, notReadable, os.ErrPermission)
}
