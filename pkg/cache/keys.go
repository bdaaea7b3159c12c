package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// NetworkKey identifies a network document fetched from a source.
	NetworkKey(source, name string) string

	// SnapshotKey identifies a rendered snapshot of a scene.
	SnapshotKey(sceneHash string, opts SnapshotKeyOpts) string
}

// SnapshotKeyOpts are the render options that change snapshot output.
type SnapshotKeyOpts struct {
	Format string  `json:"format"`
	Engine string  `json:"engine"`
	Scale  float64 `json:"scale"`
	Labels bool    `json:"labels"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// NetworkKey returns "network:<source>:<name>".
func (DefaultKeyer) NetworkKey(source, name string) string {
	return fmt.Sprintf("network:%s:%s", source, name)
}

// SnapshotKey hashes the scene hash together with the render options.
func (DefaultKeyer) SnapshotKey(sceneHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", sceneHash, opts)
}
