package alarm

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Player loads sound resources.
type Player interface {
	Load(ctx context.Context, resource string, loop bool) (Sound, error)
}

// Sound is a loaded, playable sound resource.
type Sound interface {
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
	Unload(ctx context.Context) error
	// Done is closed once playback has ended, naturally or not.
	Done() <-chan struct{}
}

// Guard owns the single playback slot: at most one sound is live at a time.
// Play and Stop are serialized, so overlapping calls queue behind each other
// and every observable state is either idle or playing.
type Guard struct {
	player Player
	logger *zap.Logger

	mu      sync.Mutex // serializes Play/Stop and guards sound
	sound   Sound
	playing atomic.Bool
}

// NewGuard creates an idle guard.
func NewGuard(player Player, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{player: player, logger: logger}
}

// Play stops whatever is playing, then loads and starts resource. Failures
// are logged and leave the guard idle.
func (g *Guard) Play(ctx context.Context, resource string, loop bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopLocked(ctx)

	sound, err := g.player.Load(ctx, resource, loop)
	if err != nil {
		g.logger.Error("failed to load alarm sound", zap.String("resource", resource), zap.Error(err))
		g.resetLocked()
		return
	}

	if err := sound.Play(ctx); err != nil {
		g.logger.Error("failed to start alarm sound", zap.String("resource", resource), zap.Error(err))
		if uerr := sound.Unload(ctx); uerr != nil {
			g.logger.Warn("failed to unload alarm sound", zap.Error(uerr))
		}
		g.resetLocked()
		return
	}

	g.sound = sound
	g.playing.Store(true)
	go g.watch(sound)
}

// Stop stops and unloads the current sound. It is safe to call when idle.
func (g *Guard) Stop(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked(ctx)
}

// IsPlaying reports whether a sound is live.
func (g *Guard) IsPlaying() bool {
	return g.playing.Load()
}

func (g *Guard) stopLocked(ctx context.Context) {
	if g.sound == nil {
		g.resetLocked()
		return
	}

	if err := g.sound.Stop(ctx); err != nil {
		g.logger.Warn("failed to stop alarm sound", zap.Error(err))
	}
	if err := g.sound.Unload(ctx); err != nil {
		g.logger.Warn("failed to unload alarm sound", zap.Error(err))
	}
	g.resetLocked()
}

func (g *Guard) resetLocked() {
	g.sound = nil
	g.playing.Store(false)
}

// watch returns the guard to idle when sound finishes on its own. If the
// sound was already stopped or replaced, there is nothing to do.
func (g *Guard) watch(sound Sound) {
	<-sound.Done()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sound != sound {
		return
	}
	if err := sound.Unload(context.Background()); err != nil {
		g.logger.Warn("failed to unload finished alarm sound", zap.Error(err))
	}
	g.resetLocked()
}
