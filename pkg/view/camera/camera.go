// Package camera implements the view transform and its timed transitions.
//
// A [Camera] never jumps: every change is an [Transition] interpolated with
// quadratic in-out easing against a [Clock]. The owner advances transitions
// by calling [Camera.Step] from its frame or tick loop. Issuing a new
// transition supersedes the one in flight, starting from wherever the camera
// currently is, so at most one interpolation is ever running.
//
// When a transition settles, listeners registered with [Camera.OnSettled]
// fire. This is the "coordinates updated" signal the density monitor reacts to.
package camera

import (
	"math"
	"time"

	"github.com/matzehuels/netview/pkg/errors"
)

// Transition durations.
const (
	FitDuration  = 500 * time.Millisecond
	ZoomDuration = 150 * time.Millisecond
	PanDuration  = 450 * time.Millisecond
)

// DefaultZoomFactor is the ratio step for ZoomIn and ZoomOut.
const DefaultZoomFactor = 1.2

// Transform is the camera's view transform. Ratio 1 is the fit-to-content
// baseline; smaller ratios zoom in.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Ratio float64 `json:"ratio"`
	Angle float64 `json:"angle"`
}

// Home is the fit-to-content transform.
var Home = Transform{Ratio: 1}

// Clock supplies the current time. Tests use a manual clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Transition is a running or finished interpolation.
type Transition struct {
	from, to   Transform
	start      time.Time
	duration   time.Duration
	done       chan struct{}
	superseded bool
}

// Done is closed when the transition settles or is superseded.
func (t *Transition) Done() <-chan struct{} { return t.done }

// Superseded reports whether a later transition replaced this one before it
// settled. Only meaningful once Done is closed.
func (t *Transition) Superseded() bool { return t.superseded }

// Target returns the transform the transition animates to.
func (t *Transition) Target() Transform { return t.to }

func (t *Transition) at(now time.Time) (Transform, bool) {
	if t.duration <= 0 {
		return t.to, true
	}
	p := float64(now.Sub(t.start)) / float64(t.duration)
	if p >= 1 {
		return t.to, true
	}
	if p < 0 {
		p = 0
	}
	e := quadInOut(p)
	return Transform{
		X:     lerp(t.from.X, t.to.X, e),
		Y:     lerp(t.from.Y, t.to.Y, e),
		Ratio: lerp(t.from.Ratio, t.to.Ratio, e),
		Angle: lerp(t.from.Angle, t.to.Angle, e),
	}, false
}

// Camera owns one view transform. It is not safe for concurrent use.
type Camera struct {
	clock     Clock
	current   Transform
	home      Transform
	active    *Transition
	listeners []func(Transform)
}

// New creates a camera at [Home]. A nil clock uses [SystemClock].
func New(clock Clock) *Camera {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Camera{clock: clock, current: Home, home: Home}
}

// SetHome changes the transform [Camera.Fit] returns to. An idle camera
// jumps to it without a transition.
func (c *Camera) SetHome(t Transform) {
	c.home = t
	if c.active == nil {
		c.current = t
	}
}

// Home returns the fit-to-content transform.
func (c *Camera) Home() Transform { return c.home }

// Transform returns the current, possibly mid-transition, transform.
func (c *Camera) Transform() Transform { return c.current }

// Animating reports whether a transition is in flight.
func (c *Camera) Animating() bool { return c.active != nil }

// OnSettled registers fn to run each time a transition settles.
func (c *Camera) OnSettled(fn func(Transform)) {
	c.listeners = append(c.listeners, fn)
}

// Animate starts a transition to target over d, superseding any transition
// in flight. A non-positive d settles on the next Step.
func (c *Camera) Animate(target Transform, d time.Duration) *Transition {
	now := c.clock.Now()
	if prev := c.active; prev != nil {
		c.current, _ = prev.at(now)
		prev.superseded = true
		close(prev.done)
	}
	t := &Transition{
		from:     c.current,
		to:       target,
		start:    now,
		duration: d,
		done:     make(chan struct{}),
	}
	c.active = t
	return t
}

// Step advances the active transition to the clock's current time. It
// returns true if the transform changed. Settle listeners run synchronously
// when the transition completes.
func (c *Camera) Step() bool {
	t := c.active
	if t == nil {
		return false
	}
	next, finished := t.at(c.clock.Now())
	changed := next != c.current
	c.current = next
	if finished {
		c.active = nil
		close(t.done)
		for _, fn := range c.listeners {
			fn(c.current)
		}
	}
	return changed
}

// Settle completes the transition in flight at its target. It returns true
// if the transform changed.
func (c *Camera) Settle() bool {
	t := c.active
	if t == nil {
		return false
	}
	c.Animate(t.to, 0)
	return c.Step()
}

// Fit animates back to the home transform set by [Camera.SetHome].
func (c *Camera) Fit() *Transition {
	return c.Animate(c.home, FitDuration)
}

// ZoomIn divides the target ratio by factor, which must be > 1.
func (c *Camera) ZoomIn(factor float64) (*Transition, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}
	to := c.live()
	to.Ratio /= factor
	return c.Animate(to, ZoomDuration), nil
}

// ZoomOut multiplies the target ratio by factor, which must be > 1.
func (c *Camera) ZoomOut(factor float64) (*Transition, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}
	to := c.live()
	to.Ratio *= factor
	return c.Animate(to, ZoomDuration), nil
}

// PanTo centers on (x, y) at ratio, which must be > 0. The angle is kept.
func (c *Camera) PanTo(x, y, ratio float64) (*Transition, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "pan ratio must be > 0, got %v", ratio)
	}
	to := c.live()
	to.X, to.Y, to.Ratio = x, y, ratio
	return c.Animate(to, PanDuration), nil
}

// live returns the transform at the clock's current time without settling
// the active transition.
func (c *Camera) live() Transform {
	if c.active != nil {
		t, _ := c.active.at(c.clock.Now())
		return t
	}
	return c.current
}

func checkFactor(f float64) error {
	if !(f > 1) || math.IsInf(f, 0) {
		return errors.New(errors.ErrCodeInvalidArgument, "zoom factor must be > 1, got %v", f)
	}
	return nil
}

func quadInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
