package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// LocalStore writes uploads under Dir and serves them from PublicPath.
type LocalStore struct {
	Dir        string
	PublicPath string
}

func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	return &LocalStore{Dir: dir, PublicPath: publicPath}, nil
}

func (s *LocalStore) Put(ctx context.Context, obj Object) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	key := objectKey(obj.Name)
	dst := filepath.Join(s.Dir, key)

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Stored{}, fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, obj.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return Stored{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return Stored{}, fmt.Errorf("close %s: %w", key, err)
	}
	log.Info().Str("module", "media.local").Str("key", key).Int64("size", obj.Size).Msg("stored upload")
	return Stored{Key: key, URL: path.Join(s.PublicPath, key), ContentType: obj.ContentType}, nil
}
