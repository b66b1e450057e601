package filex

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_RelativeResolvedAgainstCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("downloads")
	require.NoError(t, err)

	want := filepath.Join(tmp, "downloads")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	_, err = EnsureDir("downloads")
	require.NoError(t, err, "must be idempotent")
}

func TestEnsureDir_FailsWhenPathIsFile(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

	_, err := EnsureDir(p)
	require.Error(t, err)
}

func TestUploadFromPath(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "data.json")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o600))

	f, err := UploadFromPath(p)
	require.NoError(t, err)
	require.Equal(t, "data.json", f.Name)
	require.Equal(t, int64(5), f.Size)
	require.True(t, strings.HasPrefix(f.ContentType, "application/json"))

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))
}

func TestUploadFromPath_Errors(t *testing.T) {
	tmp := t.TempDir()

	_, err := UploadFromPath(filepath.Join(tmp, "missing"))
	require.Error(t, err)

	_, err = UploadFromPath(tmp)
	require.ErrorContains(t, err, "not a regular file")
}

func TestSafeName(t *testing.T) {
	require.Equal(t, "report.pdf", SafeName(" report.pdf "))
	require.Equal(t, "passwd", SafeName("../../etc/passwd"))
	require.Equal(t, "evil.exe", SafeName(`..\..\evil.exe`))
	require.Equal(t, "download", SafeName(""))
	require.Equal(t, "download", SafeName(".."))
}

func TestSave_WritesAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	p, err := Save(dir, "a.txt", strings.NewReader("first"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "a.txt"), p)

	_, err = Save(dir, "a.txt", strings.NewReader("second"))
	require.NoError(t, err)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "second", string(b))
}

func TestSave_FailedWriteRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(boom))

	_, err := Save(dir, "out.bin", r)
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(filepath.Join(dir, "out.bin"))
	require.True(t, os.IsNotExist(statErr))
}
