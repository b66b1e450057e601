// Package filex turns local paths into upload inputs and writes downloads
// back to disk.
package filex

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
)

// EnsureDir creates dir (relative paths are resolved against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// UploadFromPath describes the regular file at path as an upload input. The
// content type is guessed from the extension; unknown types are left blank.
func UploadFromPath(path string) (models.UploadFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return models.UploadFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return models.UploadFile{}, fmt.Errorf("%s is not a regular file", path)
	}

	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))

	return models.UploadFile{
		Name:        fi.Name(),
		Size:        fi.Size(),
		ContentType: ct,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// SafeName reduces name to a single path element usable inside a download
// directory.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.FromSlash(name))
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return "download"
	}
	return name
}

// Save writes r to dir/SafeName(name), replacing an existing file, and
// returns the written path. A failed write removes the partial file.
func Save(dir, name string, r io.Reader) (string, error) {
	dir, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, SafeName(name))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
