// Package source loads network documents by name.
//
// A network reference is either a file path or "mongo:<name>". File sources
// read the JSON document format of the graph package; Mongo sources fetch
// the same structure from a collection keyed by the document name. Either
// can be wrapped in [Cached] to avoid repeated fetches.
package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/netview/pkg/graph"
)

// MongoScheme prefixes references resolved from MongoDB.
const MongoScheme = "mongo:"

// Source loads network documents.
type Source interface {
	// Load returns the document called name.
	Load(ctx context.Context, name string) (graph.Document, error)

	// Kind names the backend, used in cache keys and log fields.
	Kind() string
}

// Ref is a parsed network reference.
type Ref struct {
	Kind string // "file" or "mongo"
	Name string // path or document name
}

// ParseRef splits ref into backend kind and name.
func ParseRef(ref string) Ref {
	if name, ok := strings.CutPrefix(ref, MongoScheme); ok {
		return Ref{Kind: KindMongo, Name: name}
	}
	return Ref{Kind: KindFile, Name: ref}
}

// String returns the reference in its parseable form.
func (r Ref) String() string {
	if r.Kind == KindMongo {
		return MongoScheme + r.Name
	}
	return r.Name
}

// Base returns the name without directories or extension, used to label
// events, sessions and output files.
func (r Ref) Base() string {
	base := filepath.Base(r.Name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "network"
	}
	return base
}
