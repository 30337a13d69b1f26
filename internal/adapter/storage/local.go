package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
)

const BucketOfferImages = "offer-images"

var (
	ErrInvalidPath     = errors.New("storage: invalid object path")
	ErrExists          = errors.New("storage: object already exists")
	ErrUnsupportedType = errors.New("storage: unsupported file type")
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// ObjectKey builds "<prefix>/<ksuid><ext>" for an uploaded image name.
func ObjectKey(prefix, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExts[ext] {
		return "", ErrUnsupportedType
	}
	return prefix + "/" + ksuid.New().String() + ext, nil
}

// Local stores objects under <root>/<bucket>/<path>.
type Local struct {
	root      string
	publicURL string
}

func NewLocal(root, publicURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Local{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (l *Local) Root() string { return l.root }

func cleanKey(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", ErrInvalidPath
	}
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidPath
		}
	}
	return path.Join(bucket, key), nil
}

// Upload writes r to bucket/key and refuses to overwrite an existing object.
func (l *Local) Upload(ctx context.Context, bucket, key string, r io.Reader) (string, error) {
	rel, err := cleanKey(bucket, key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", ErrExists
		}
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return key, nil
}

func (l *Local) Remove(_ context.Context, bucket, key string) error {
	rel, err := cleanKey(bucket, key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) PublicURL(bucket, key string) string {
	return l.publicURL + "/" + bucket + "/" + key
}

// KeyFromURL reverses PublicURL; ok is false for foreign URLs.
func (l *Local) KeyFromURL(bucket, u string) (string, bool) {
	prefix := l.publicURL + "/" + bucket + "/"
	if !strings.HasPrefix(u, prefix) {
		return "", false
	}
	return strings.TrimPrefix(u, prefix), true
}

func (l *Local) NewKey(prefix, filename string) (string, error) { return ObjectKey(prefix, filename) }
