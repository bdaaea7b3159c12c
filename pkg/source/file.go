package source

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
)

// KindFile identifies [FileSource].
const KindFile = "file"

// FileSource reads JSON network files. Relative names resolve against Dir.
type FileSource struct {
	Dir string
}

func (FileSource) Kind() string { return KindFile }

func (s FileSource) Load(ctx context.Context, name string) (graph.Document, error) {
	if err := ctx.Err(); err != nil {
		return graph.Document{}, err
	}
	path := name
	if s.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, path)
	}
	doc, err := graph.ReadDocumentFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return graph.Document{}, errors.Wrap(errors.ErrCodeNotFound, err, "network %q", name)
		}
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidNetwork, err, "network %q", name)
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(name)
	}
	return doc, nil
}
