package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Local stores images under <root>/listings on the local filesystem.
type Local struct {
	root  string
	paths Paths
	now   func() time.Time
}

func NewLocal(root string, paths Paths) (*Local, error) {
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("images/local: resolve %s: %w", root, err)
		}
		root = abs
	}
	if err := os.MkdirAll(filepath.Join(root, listingsDir), 0o755); err != nil {
		return nil, fmt.Errorf("images/local: mkdir: %w", err)
	}
	return &Local{root: root, paths: paths, now: time.Now}, nil
}

func (d *Local) Driver() string { return "local" }

// Root is the directory served under the public prefix.
func (d *Local) Root() string { return d.root }

func (d *Local) abs(name string) string {
	return filepath.Join(d.root, listingsDir, name)
}

func (d *Local) Save(ctx context.Context, u Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("images/local: open upload: %w", err)
	}
	defer src.Close()

	name := NewName(d.now(), u.Filename, u.ContentType)
	full := d.abs(name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("images/local: create %s: %w", name, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("images/local: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("images/local: close %s: %w", name, err)
	}
	return d.paths.Ref(name), nil
}

func (d *Local) Remove(_ context.Context, ref string) error {
	name, err := d.paths.Name(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(d.abs(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("images/local: delete %s: %w", name, err)
	}
	return nil
}

func (d *Local) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, listingsDir))
	if err != nil {
		return nil, fmt.Errorf("images/local: list: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, d.paths.Ref(e.Name()))
		}
	}
	return out, nil
}
