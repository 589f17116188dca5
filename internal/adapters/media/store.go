// Package media stores uploaded files and returns the URL clients share.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/vardhanngg/socket-v/internal/config"
)

var ErrUnknownStore = errors.New("unknown media store")

// Object is an upload on its way into a Store.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Stored describes a file after it landed.
type Stored struct {
	Key         string
	URL         string
	ContentType string
}

type Store interface {
	Put(ctx context.Context, obj Object) (Stored, error)
}

// New builds the store selected in cfg.
func New(cfg config.Media) (Store, error) {
	switch cfg.Store {
	case "", "local":
		return NewLocalStore(cfg.Dir, cfg.PublicPath)
	case "s3", "minio":
		return NewS3Store(S3Options{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			PublicURL: cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey keeps the original file name readable but unique.
func objectKey(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return uuid.NewString() + "-" + base
}
