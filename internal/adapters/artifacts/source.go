package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"estate_hub/internal/domain"
)

// Source opens a named artifact (e.g. "cosine_sim1.csv").
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads artifacts from a local directory.
type DirSource struct{ Dir string }

func (d DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.Dir, filepath.Clean("/"+name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("artifact %q: %w", name, domain.ErrNotFound)
	}
	return f, err
}
