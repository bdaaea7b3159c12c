// Package config loads netview configuration from TOML.
//
// Files are merged over [Default]: any key left out keeps its default.
// Unknown keys are rejected so typos surface instead of silently doing
// nothing.
//
//	[graph]
//	large_graph_threshold = 1000
//	edge_type_tag = "Is_Tree_Edge"
//	tree_edge_value = "Tree"
//
//	[tiers.compact]
//	label_threshold = 2
//
// [Watch] reloads the file on change for long-running hosts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/style"
	"github.com/matzehuels/netview/pkg/view"
	"github.com/matzehuels/netview/pkg/view/camera"
)

// Config is the full netview configuration.
type Config struct {
	Graph     GraphConfig     `toml:"graph"`
	Selection SelectionConfig `toml:"selection"`
	Camera    CameraConfig    `toml:"camera"`
	Palette   view.Palette    `toml:"palette"`
	Tiers     view.TierTable  `toml:"tiers"`
	Server    ServerConfig    `toml:"server"`
	Style     StyleConfig     `toml:"style"`
}

// GraphConfig controls load-time classification.
type GraphConfig struct {
	LargeGraphThreshold int    `toml:"large_graph_threshold"`
	EdgeTypeTag         string `toml:"edge_type_tag"`
	TreeEdgeValue       string `toml:"tree_edge_value"`
}

// SelectionConfig controls the highlight cascade.
type SelectionConfig struct {
	LabelAttribute   string  `toml:"label_attribute"`
	LinkLabelPrefix  string  `toml:"link_label_prefix"`
	TypeAttribute    string  `toml:"type_attribute"`
	DeEmphasizedType string  `toml:"de_emphasized_type"`
	RecenterRatio    float64 `toml:"recenter_ratio"`
}

// CameraConfig controls command defaults.
type CameraConfig struct {
	ZoomFactor      float64 `toml:"zoom_factor"`
	ZoomToNodeRatio float64 `toml:"zoom_to_node_ratio"`
}

// ServerConfig controls `netview serve` and its backing services.
// Empty addresses disable the corresponding service.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	RedisAddr       string `toml:"redis_addr"`
	NATSURL         string `toml:"nats_url"`
	NATSSubject     string `toml:"nats_subject"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// StyleConfig controls initial node colors.
type StyleConfig struct {
	ColorAttribute string            `toml:"color_attribute"`
	Types          map[string]string `toml:"types"`
	GenerateColors bool              `toml:"generate_colors"`
}

// Default returns the default configuration.
func Default() *Config {
	cls := view.DefaultClassifier()
	return &Config{
		Graph: GraphConfig{
			LargeGraphThreshold: view.DefaultLargeGraphThreshold,
			EdgeTypeTag:         "Is_Tree_Edge",
			TreeEdgeValue:       "Tree",
		},
		Selection: SelectionConfig{
			LabelAttribute:   cls.LabelKey,
			LinkLabelPrefix:  cls.LinkPrefix,
			TypeAttribute:    cls.TypeKey,
			DeEmphasizedType: cls.DeEmphasized,
			RecenterRatio:    view.DefaultRecenterRatio,
		},
		Camera: CameraConfig{
			ZoomFactor:      camera.DefaultZoomFactor,
			ZoomToNodeRatio: view.DefaultZoomToNodeRatio,
		},
		Palette: view.DefaultPalette(),
		Tiers:   view.DefaultTierTable(),
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			NATSSubject:     "netview",
			MongoDatabase:   "netview",
			MongoCollection: "networks",
		},
		Style: StyleConfig{
			ColorAttribute: style.DefaultColorKey,
			GenerateColors: true,
		},
	}
}

// Dir returns the netview config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "netview")
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults and validates the result. A missing file
// at the default path yields the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges TOML data into cfg and validates it.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.Graph.LargeGraphThreshold > 0, "graph.large_graph_threshold must be > 0")
	check(c.Graph.EdgeTypeTag != "", "graph.edge_type_tag must be set")
	check(c.Selection.RecenterRatio > 0, "selection.recenter_ratio must be > 0")
	check(c.Camera.ZoomFactor > 1, "camera.zoom_factor must be > 1")
	check(c.Camera.ZoomToNodeRatio > 0, "camera.zoom_to_node_ratio must be > 0")

	for name, p := range map[string]view.StyleParams{"compact": c.Tiers.Compact, "sparse": c.Tiers.Sparse} {
		check(p.MinNodeSize > 0 && p.MaxNodeSize >= p.MinNodeSize,
			"tiers.%s: node sizes must satisfy 0 < min <= max", name)
		check(p.LabelSizeRatio > 0, "tiers.%s.label_size_ratio must be > 0", name)
	}

	for key, hex := range c.paletteColors() {
		_, err := style.Normalize(hex)
		check(err == nil, "palette.%s: invalid color %q", key, hex)
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) paletteColors() map[string]string {
	p := c.Palette
	return map[string]string{
		"default": p.Default, "highlight": p.Highlight, "soft": p.Soft, "muted": p.Muted,
		"revealed": p.Revealed, "suppressed": p.Suppressed, "path": p.Path,
		"white": p.White, "white_as": p.WhiteAs,
	}
}

// ViewOptions returns the view options this configuration controls. Hosts
// fill in the renderer, index, listener and logger.
func (c *Config) ViewOptions() view.Options {
	return view.Options{
		LargeGraphThreshold: c.Graph.LargeGraphThreshold,
		Tiers:               c.Tiers,
		Palette:             c.Palette,
		Classifier: view.Classifier{
			LabelKey:     c.Selection.LabelAttribute,
			LinkPrefix:   c.Selection.LinkLabelPrefix,
			TypeKey:      c.Selection.TypeAttribute,
			DeEmphasized: c.Selection.DeEmphasizedType,
		},
		RecenterRatio:   c.Selection.RecenterRatio,
		ZoomFactor:      c.Camera.ZoomFactor,
		ZoomToNodeRatio: c.Camera.ZoomToNodeRatio,
	}
}

// BuildOptions returns the graph build options: suppression by tree tag and
// the label attribute.
func (c *Config) BuildOptions() graph.BuildOptions {
	return graph.BuildOptions{
		Suppressed: graph.TagEquals(c.Graph.EdgeTypeTag, c.Graph.TreeEdgeValue),
		LabelKey:   c.Selection.LabelAttribute,
	}
}

// Resolver returns the node color resolver.
func (c *Config) Resolver() (*style.Resolver, error) {
	r, err := style.NewResolver(c.Style.Types, c.Style.GenerateColors)
	if err != nil {
		return nil, err
	}
	r.ColorKey = c.Style.ColorAttribute
	r.TypeKey = c.Selection.TypeAttribute
	return r, nil
}
