package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image exceeds the size limit")
	ErrTooMany         = errors.New("too many images")
	// ErrForeignRef is returned for refs outside the listings image prefix.
	ErrForeignRef = errors.New("not a listing image reference")
)

const listingsDir = "listings"

// Upload is one file taken from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Store persists listing images and hands back public reference paths.
type Store interface {
	Save(ctx context.Context, u Upload) (string, error)
	// Remove deletes the object behind ref; a missing object is not an error.
	Remove(ctx context.Context, ref string) error
	// List returns the refs of every stored image.
	List(ctx context.Context) ([]string, error)
	Driver() string
}

// Paths maps between public refs (/uploads/listings/<name>) and object names.
type Paths struct {
	Prefix string
}

func NewPaths(prefix string) Paths {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	return Paths{Prefix: prefix}
}

func (p Paths) Ref(name string) string {
	return p.Prefix + "/" + listingsDir + "/" + name
}

// Name extracts the object name from ref, rejecting anything that is not a
// plain file directly under the listings prefix.
func (p Paths) Name(ref string) (string, error) {
	dir := p.Prefix + "/" + listingsDir + "/"
	name, ok := strings.CutPrefix(ref, dir)
	if !ok || name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrForeignRef, ref)
	}
	return name, nil
}

var allowedExt = []string{".jpeg", ".jpg", ".png", ".webp", ".gif", ".avif"}

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// Policy bounds what a single request may upload.
type Policy struct {
	MaxBytes int64
	MaxFiles int
}

// Check validates every upload before any of them is stored.
func (p Policy) Check(uploads []Upload) error {
	if p.MaxFiles > 0 && len(uploads) > p.MaxFiles {
		return fmt.Errorf("%w: %d files, at most %d", ErrTooMany, len(uploads), p.MaxFiles)
	}
	for _, u := range uploads {
		if !Supported(u.Filename, u.ContentType) {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, u.Filename)
		}
		if p.MaxBytes > 0 && u.Size > p.MaxBytes {
			return fmt.Errorf("%w: %s", ErrTooLarge, u.Filename)
		}
	}
	return nil
}

// Supported accepts a file when either its MIME type or its extension
// says image.
func Supported(filename, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return true
	}
	return slices.Contains(allowedExt, strings.ToLower(filepath.Ext(filename)))
}

// NewName builds <unixMillis>-<random><ext>.
func NewName(now time.Time, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filepath.Base(filename)))
	if !slices.Contains(allowedExt, ext) {
		ext = extByType[strings.ToLower(contentType)]
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), random, ext)
}
