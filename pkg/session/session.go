// Package session persists view sessions: the camera and selection of a
// view over a named network, so a viewer can resume where it left off.
//
// Backends:
//   - [FileStore]: JSON files in a config directory, for the CLI viewer
//   - [MemoryStore]: in-process map, for tests and single-instance servers
//   - [RedisStore]: shared storage for multi-instance `netview serve`
//
// # Usage
//
//	store, err := session.NewFileStore("") // ~/.config/netview/sessions/
//	sess := session.New("demo", "pathways.json", session.DefaultTTL)
//	sess.Camera, sess.Selected = ctrl.Camera().Transform(), ctrl.Selected()
//	err = store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, "demo")
//	if sess == nil {
//	    // not found or expired
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/netview/pkg/view/camera"
)

// Session is a saved view.
type Session struct {
	ID       string           `json:"id"`
	Network  string           `json:"network"`
	Camera   camera.Transform `json:"camera"`
	Selected string           `json:"selected,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Touch records an update and extends the expiry by ttl.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now()
	s.UpdatedAt = now
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
}

// TTL returns the time left before expiry, or zero if none is set.
func (s *Session) TTL() time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	return time.Until(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the default session lifetime.
const DefaultTTL = 30 * 24 * time.Hour

// GenerateID returns a random session ID.
func GenerateID() string {
	return uuid.NewString()
}

// HasCamera reports whether a camera transform has been saved. A fresh
// session leaves the camera zero so viewers start at the network's own home.
func (s *Session) HasCamera() bool { return s.Camera.Ratio > 0 }

// New creates a session for network with no saved camera. An empty id gets
// a generated one.
func New(id, network string, ttl time.Duration) *Session {
	if id == "" {
		id = GenerateID()
	}
	now := time.Now()
	s := &Session{
		ID:        id,
		Network:   network,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}
