package rasterizer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinary writes a script that copies stdin into its last argument, or fails with a message.
func fakeBinary(t *testing.T, fail bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script binary")
	}

	script := "#!/bin/sh\nfor last; do :; done\ncat > \"$last\"\n"
	if fail {
		script = "#!/bin/sh\necho 'cannot load font' >&2\nexit 1\n"
	}

	path := filepath.Join(t.TempDir(), "wkhtmltoimage")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestWkhtmltoimage_Check(t *testing.T) {
	assert.ErrorIs(t, NewWkhtmltoimage("", 600).Check(), ErrBinaryNotConfigured)
	assert.ErrorIs(t, NewWkhtmltoimage(filepath.Join(t.TempDir(), "missing"), 600).Check(), os.ErrNotExist)
	assert.Error(t, NewWkhtmltoimage(t.TempDir(), 600).Check())
	assert.NoError(t, NewWkhtmltoimage(fakeBinary(t, false), 600).Check())
}

func TestWkhtmltoimage_Args(t *testing.T) {
	args := NewWkhtmltoimage("/bin/wk", 600).args("out.png")

	assert.Equal(t, "out.png", args[len(args)-1])
	assert.Equal(t, "-", args[len(args)-2])
	assert.Subset(t, args, []string{"--format", "png", "--encoding", "UTF-8", "--quality", "100", "--width", "600", "--minimum-font-size", "10"})
}

func TestWkhtmltoimage_Rasterize(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report_20250530.png")

	err := NewWkhtmltoimage(fakeBinary(t, false), 600).Rasterize(context.Background(), []byte("<html>ok</html>"), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(data))
}

func TestWkhtmltoimage_RasterizeFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.png")

	err := NewWkhtmltoimage(fakeBinary(t, true), 600).Rasterize(context.Background(), []byte("<html></html>"), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot load font")
	assert.NoFileExists(t, out)
}

func TestChrome_Check(t *testing.T) {
	assert.NoError(t, NewChrome("", 600).Check())
	assert.ErrorIs(t, NewChrome(filepath.Join(t.TempDir(), "chrome"), 600).Check(), os.ErrNotExist)
}
