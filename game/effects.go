package game

import "github.com/halcyon-games/mitos/components"

// EffectKind enumerates outbound visual effect requests.
type EffectKind uint8

const (
	EffectExplosion EffectKind = iota
	EffectSplash
	EffectTrail
	EffectScorePopup
	EffectPowerUp
)

// EffectRequest is a fire-and-forget notification for the effects
// collaborator. The simulation never awaits or depends on playback.
type EffectRequest struct {
	Kind       EffectKind
	X, Y       float32
	Color      components.Color
	Count      int     // Particle count (explosion, splash)
	Size       float32 // Particle size
	DirX, DirY float32 // Splash direction
	Text       string  // Score popup text
}

// EffectQueue collects effect requests during a tick. The owning
// collaborator drains it between ticks; requests are never delivered
// through any global channel.
type EffectQueue struct {
	pending []EffectRequest
}

// NewEffectQueue creates an empty queue.
func NewEffectQueue() *EffectQueue {
	return &EffectQueue{pending: make([]EffectRequest, 0, 64)}
}

// Explosion queues an explosion burst.
func (q *EffectQueue) Explosion(x, y float32, color components.Color, count int, size float32) {
	q.pending = append(q.pending, EffectRequest{
		Kind: EffectExplosion, X: x, Y: y, Color: color, Count: count, Size: size,
	})
}

// Splash queues a consumption splash.
func (q *EffectQueue) Splash(x, y float32, color components.Color, dirX, dirY float32, count int) {
	q.pending = append(q.pending, EffectRequest{
		Kind: EffectSplash, X: x, Y: y, Color: color, DirX: dirX, DirY: dirY, Count: count,
	})
}

// Trail queues a movement trail puff.
func (q *EffectQueue) Trail(x, y float32, color components.Color, size float32) {
	q.pending = append(q.pending, EffectRequest{
		Kind: EffectTrail, X: x, Y: y, Color: color, Size: size,
	})
}

// ScorePopup queues a floating score text.
func (q *EffectQueue) ScorePopup(x, y float32, text string, color components.Color) {
	q.pending = append(q.pending, EffectRequest{
		Kind: EffectScorePopup, X: x, Y: y, Text: text, Color: color,
	})
}

// PowerUpVisual queues a pickup flash.
func (q *EffectQueue) PowerUpVisual(x, y float32, color components.Color) {
	q.pending = append(q.pending, EffectRequest{
		Kind: EffectPowerUp, X: x, Y: y, Color: color,
	})
}

// Drain returns all pending requests and clears the queue.
func (q *EffectQueue) Drain() []EffectRequest {
	out := q.pending
	q.pending = make([]EffectRequest, 0, cap(out))
	return out
}

// Len returns the number of pending requests.
func (q *EffectQueue) Len() int {
	return len(q.pending)
}
