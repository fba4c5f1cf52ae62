package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Local is an in-process Port backed by timers. At most one notification is
// pending per task: scheduling again replaces the previous one.
type Local struct {
	logger *zap.Logger

	mu          sync.Mutex
	pending     map[Handle]*pendingEntry
	byTask      map[int64]Handle
	delivered   map[Handle]Delivery
	deliveredCB []func(Delivery)
	ackCB       []func(Delivery)
	closed      bool
}

type pendingEntry struct {
	n     Notification
	timer *time.Timer
}

var _ Port = (*Local)(nil)

// NewLocal creates an empty Local port.
func NewLocal(logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{
		logger:    logger,
		pending:   make(map[Handle]*pendingEntry),
		byTask:    make(map[int64]Handle),
		delivered: make(map[Handle]Delivery),
	}
}

// Schedule arms a timer for n.At.
func (l *Local) Schedule(ctx context.Context, n Notification) (Handle, error) {
	wait := time.Until(n.At)
	if wait <= 0 {
		return "", ErrInPast
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return "", context.Canceled
	}

	// Latest write wins
	if old, ok := l.byTask[n.TaskID]; ok {
		l.cancelLocked(old)
	}

	h := Handle(uuid.NewString())
	l.pending[h] = &pendingEntry{
		n:     n,
		timer: time.AfterFunc(wait, func() { l.fire(h) }),
	}
	l.byTask[n.TaskID] = h

	l.logger.Debug("notification scheduled",
		zap.String("handle", string(h)),
		zap.Int64("task_id", n.TaskID),
		zap.Time("at", n.At))
	return h, nil
}

// CancelAllForTask stops the pending notification for taskID, if any.
func (l *Local) CancelAllForTask(ctx context.Context, taskID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for h, e := range l.pending {
		if e.n.TaskID == taskID {
			l.cancelLocked(h)
		}
	}
	return nil
}

// OnDelivered registers fn to run when a notification fires.
func (l *Local) OnDelivered(fn func(Delivery)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deliveredCB = append(l.deliveredCB, fn)
}

// OnAcknowledged registers fn to run when the user acknowledges a delivery.
func (l *Local) OnAcknowledged(fn func(Delivery)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ackCB = append(l.ackCB, fn)
}

// Acknowledge marks a delivered notification as seen by the user.
func (l *Local) Acknowledge(ctx context.Context, h Handle) error {
	l.mu.Lock()
	d, ok := l.delivered[h]
	if !ok {
		l.mu.Unlock()
		return ErrUnknownHandle
	}
	delete(l.delivered, h)
	cbs := append([]func(Delivery){}, l.ackCB...)
	l.mu.Unlock()

	for _, fn := range cbs {
		fn(d)
	}
	return nil
}

// Outstanding returns delivered notifications not yet acknowledged, oldest first.
func (l *Local) Outstanding() []Delivery {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Delivery, 0, len(l.delivered))
	for _, d := range l.delivered {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DeliveredAt.Before(out[j].DeliveredAt)
	})
	return out
}

// Pending returns scheduled notifications ordered by fire time.
func (l *Local) Pending() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Notification, 0, len(l.pending))
	for _, e := range l.pending {
		out = append(out, e.n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}

// Close stops all pending timers. Later Schedule calls fail.
func (l *Local) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for h := range l.pending {
		l.cancelLocked(h)
	}
	l.closed = true
}

func (l *Local) cancelLocked(h Handle) {
	e, ok := l.pending[h]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(l.pending, h)
	if l.byTask[e.n.TaskID] == h {
		delete(l.byTask, e.n.TaskID)
	}
}

func (l *Local) fire(h Handle) {
	l.mu.Lock()
	e, ok := l.pending[h]
	if !ok {
		// Cancelled after the timer had already started firing
		l.mu.Unlock()
		return
	}
	delete(l.pending, h)
	if l.byTask[e.n.TaskID] == h {
		delete(l.byTask, e.n.TaskID)
	}

	d := Delivery{Handle: h, Notification: e.n, DeliveredAt: time.Now()}
	l.delivered[h] = d
	cbs := append([]func(Delivery){}, l.deliveredCB...)
	l.mu.Unlock()

	l.logger.Info("notification delivered",
		zap.String("handle", string(h)),
		zap.Int64("task_id", e.n.TaskID))
	for _, fn := range cbs {
		fn(d)
	}
}
