package source

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/netview/pkg/cache"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"net.json", Ref{KindFile, "net.json"}},
		{"/tmp/a/net.json", Ref{KindFile, "/tmp/a/net.json"}},
		{"mongo:pathways", Ref{KindMongo, "pathways"}},
	}
	for _, tt := range tests {
		got := ParseRef(tt.in)
		if got != tt.want {
			t.Errorf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestRefBase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"testdata/pathways.json", "pathways"},
		{"mongo:pathways", "pathways"},
		{"mongo:v1.2", "v1"},
		{"net", "net"},
		{"", "network"},
	}
	for _, tt := range tests {
		if got := ParseRef(tt.in).Base(); got != tt.want {
			t.Errorf("ParseRef(%q).Base() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	src := FileSource{Dir: "../graph/testdata"}

	doc, err := src.Load(ctx, "triangle.json")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "triangle" || len(doc.Elements.Nodes) != 3 {
		t.Errorf("doc = %s with %d nodes", doc.Name, len(doc.Elements.Nodes))
	}

	if _, err := src.Load(ctx, "missing.json"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file err = %v, want NOT_FOUND", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := src.Load(cancelled, "triangle.json"); err == nil {
		t.Error("cancelled context should fail")
	}
}

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, k string) ([]byte, bool, error) {
	v, ok := m[k]
	return v, ok, nil
}
func (m mapCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	m[k] = v
	return nil
}
func (m mapCache) Delete(_ context.Context, k string) error {
	delete(m, k)
	return nil
}
func (m mapCache) Close() error { return nil }

type countingSource struct {
	loads int
}

func (s *countingSource) Kind() string { return "count" }
func (s *countingSource) Load(_ context.Context, name string) (graph.Document, error) {
	s.loads++
	if name == "bad" {
		return graph.Document{}, errors.New(errors.ErrCodeNotFound, "no %s", name)
	}
	return graph.Document{Name: name, Elements: graph.Elements{
		Nodes: []graph.NodeElement{{Data: graph.Attributes{"id": "A"}}},
	}}, nil
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{}
	store := mapCache{}
	src := NewCached(inner, store, nil, time.Hour, nil)

	for i := 0; i < 3; i++ {
		doc, err := src.Load(ctx, "net")
		if err != nil {
			t.Fatal(err)
		}
		if doc.Name != "net" || len(doc.Elements.Nodes) != 1 {
			t.Fatalf("doc = %+v", doc)
		}
	}
	if inner.loads != 1 {
		t.Errorf("inner loads = %d, want 1", inner.loads)
	}
	if _, ok := store[cache.NewDefaultKeyer().NetworkKey("count", "net")]; !ok {
		t.Error("document not cached under network key")
	}

	if _, err := src.Load(ctx, "bad"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v", err)
	}
	if len(store) != 1 {
		t.Error("failed loads must not be cached")
	}

	store[cache.NewDefaultKeyer().NetworkKey("count", "corrupt")] = []byte("{")
	if _, err := src.Load(ctx, "corrupt"); err != nil {
		t.Errorf("corrupt entry should fall through: %v", err)
	}
}
