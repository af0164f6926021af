package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps files in a directory on disk, served by the router under URLPrefix
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory, %w", err)
	}

	return &Local{
		Dir:       dir,
		URLPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (l *Local) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}

	return filepath.Join(l.Dir, name), nil
}

// Save writes to a temporary file first so a half written upload never
// shows up under its real name
func (l *Local) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}

	tmp := p + ".part"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write file, %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close file, %w", err)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move file into place, %w", err)
	}

	return nil
}

func (l *Local) Delete(_ context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file, %w", err)
	}

	return nil
}

func (l *Local) URL(name string) string {
	return l.URLPrefix + "/" + url.PathEscape(name)
}
