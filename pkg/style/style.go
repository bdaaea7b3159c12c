// Package style resolves initial node colors from domain attributes.
//
// A [Resolver] checks, in order: an explicit color attribute, a configured
// color for the node's type, and a generated color derived from the type
// name. Generated colors are stable across runs so the same type always gets
// the same hue.
package style

import (
	"hash/fnv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
)

// Default attribute names.
const (
	DefaultColorKey = "color"
	DefaultTypeKey  = "NodeType"
)

// Resolver maps node attributes to an initial color. It implements
// view.StyleResolver.
type Resolver struct {
	// ColorKey names an attribute carrying an explicit hex color.
	ColorKey string
	// TypeKey names the node type attribute.
	TypeKey string
	// Types maps node type to hex color.
	Types map[string]string
	// Generate derives a color for types missing from Types.
	Generate bool
}

// NewResolver returns a resolver with the default attribute names and the
// given type colors. Invalid hex values are rejected.
func NewResolver(types map[string]string, generate bool) (*Resolver, error) {
	r := &Resolver{
		ColorKey: DefaultColorKey,
		TypeKey:  DefaultTypeKey,
		Types:    make(map[string]string, len(types)),
		Generate: generate,
	}
	for t, hex := range types {
		norm, err := Normalize(hex)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "style for type %q", t)
		}
		r.Types[t] = norm
	}
	return r, nil
}

// ResolveInitialColor returns the initial color for a node, or "" to let
// the caller apply its default.
func (r *Resolver) ResolveInitialColor(attrs graph.Attributes) string {
	if r.ColorKey != "" {
		if hex, err := Normalize(attrs.String(r.ColorKey)); err == nil {
			return hex
		}
	}
	typ := attrs.String(r.TypeKey)
	if typ == "" {
		return ""
	}
	if hex, ok := r.Types[typ]; ok {
		return hex
	}
	if r.Generate {
		return ForType(typ)
	}
	return ""
}

// Normalize parses a hex color and returns it as upper-case #RRGGBB.
func Normalize(hex string) (string, error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidArgument, err, "color %q", hex)
	}
	return strings.ToUpper(c.Hex()), nil
}

// ForType derives a stable, medium-lightness color from a type name.
func ForType(typ string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(typ))
	hue := float64(h.Sum32() % 360)
	return strings.ToUpper(colorful.Hcl(hue, 0.55, 0.65).Clamped().Hex())
}

// Blend mixes a toward b by t in Lab space. Unparseable inputs return a.
func Blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return strings.ToUpper(ca.BlendLab(cb, t).Clamped().Hex())
}

// IsLight reports whether a color is light enough to need dark text.
func IsLight(hex string) bool {
	c, err := colorful.Hex(hex)
	if err != nil {
		return false
	}
	l, _, _ := c.Lab()
	return l > 0.7
}
