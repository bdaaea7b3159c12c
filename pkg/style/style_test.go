package style

import (
	"testing"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
)

func TestResolveInitialColor(t *testing.T) {
	r, err := NewResolver(map[string]string{"Gene": "#00aa00", "Pathway": "#0000ff"}, true)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		attrs graph.Attributes
		want  string
	}{
		{"Explicit", graph.Attributes{"color": "#ffffff", "NodeType": "Gene"}, "#FFFFFF"},
		{"InvalidExplicitFallsBackToType", graph.Attributes{"color": "red", "NodeType": "Gene"}, "#00AA00"},
		{"Type", graph.Attributes{"NodeType": "Pathway"}, "#0000FF"},
		{"Generated", graph.Attributes{"NodeType": "Drug"}, ForType("Drug")},
		{"Untyped", graph.Attributes{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ResolveInitialColor(tt.attrs); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	r.Generate = false
	if got := r.ResolveInitialColor(graph.Attributes{"NodeType": "Drug"}); got != "" {
		t.Errorf("without generation got %q, want empty", got)
	}
}

func TestNewResolverRejectsBadColor(t *testing.T) {
	_, err := NewResolver(map[string]string{"Gene": "green"}, false)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestForTypeStable(t *testing.T) {
	a, b := ForType("Gene"), ForType("Gene")
	if a != b {
		t.Errorf("ForType not stable: %s vs %s", a, b)
	}
	if _, err := Normalize(a); err != nil {
		t.Errorf("ForType produced invalid hex %q", a)
	}
}

func TestBlend(t *testing.T) {
	if got := Blend("#000000", "#FFFFFF", 0); got != "#000000" {
		t.Errorf("Blend t=0 = %s", got)
	}
	if mid := Blend("#000000", "#FFFFFF", 0.5); mid == "#000000" || mid == "#FFFFFF" {
		t.Errorf("Blend t=0.5 = %s, want a gray", mid)
	}
	if got := Blend("bogus", "#FFFFFF", 0.5); got != "bogus" {
		t.Errorf("Blend with invalid input = %s", got)
	}
	if !IsLight("#FFFFFF") || IsLight("#000000") {
		t.Error("IsLight misclassified black/white")
	}
}
