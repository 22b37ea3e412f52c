package playback

import (
	"context"
	"log"
	"sync"

	"trip-replay/internal/trip"
)

// EventSink consumes emitted events. Sink errors are logged and do not
// abort the run.
type EventSink interface {
	Emit(Event) error
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(Event) error

func (f SinkFunc) Emit(ev Event) error { return f(ev) }

// MultiSink fans one event out to several sinks.
func MultiSink(sinks ...EventSink) EventSink {
	return SinkFunc(func(ev Event) error {
		for _, s := range sinks {
			if err := s.Emit(ev); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunMetrics is the slice of the metrics collector the manager needs.
// SetActiveRuns receives the live-run count so the gauge always reflects
// manager state, however run starts and finishes interleave.
type RunMetrics interface {
	RunStarted()
	RunFinished()
	EventEmitted()
	SetActiveRuns(n int)
}

// Handle identifies one playback run. It is owned by whoever started the
// run; Cancel is idempotent and Done unblocks once the run has stopped
// emitting.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the run between two events. Already-emitted events are
// not rolled back.
func (h *Handle) Cancel() { h.cancel() }

// Done returns a channel closed when the run has fully stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Manager enforces that at most one playback run is live. Starting a new
// run cancels the previous one and waits for it to finish first, so the
// renderer never sees two concurrent marker streams.
type Manager struct {
	metrics RunMetrics

	// startMu serializes the whole cancel-wait-start sequence so two
	// concurrent Play calls cannot both drain the same predecessor and
	// then both go live.
	startMu sync.Mutex

	mu     sync.Mutex
	active *Handle
	wg     sync.WaitGroup
}

func NewManager(metrics RunMetrics) *Manager {
	return &Manager{metrics: metrics}
}

// Play cancels any in-flight run, then starts a new one over the given
// points, forwarding each event to sink. Validation errors surface here,
// before anything is emitted.
func (m *Manager) Play(parent context.Context, points []trip.Point, totalSeconds int, sink EventSink) (*Handle, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	if prev := m.active; prev != nil {
		prev.Cancel()
		m.mu.Unlock()
		<-prev.Done()
		m.mu.Lock()
	}

	ctx, cancel := context.WithCancel(parent)
	events, err := Schedule(ctx, points, totalSeconds)
	if err != nil {
		cancel()
		m.mu.Unlock()
		return nil, err
	}

	h := &Handle{cancel: cancel, done: make(chan struct{})}
	m.active = h
	m.wg.Add(1)
	if m.metrics != nil {
		m.metrics.RunStarted()
		m.metrics.SetActiveRuns(1)
	}
	m.mu.Unlock()

	log.Printf("starting playback run: %d points over %ds (delay %s)", len(points), totalSeconds, Delay(totalSeconds, len(points)))
	go func() {
		defer m.wg.Done()
		for ev := range events {
			if err := sink.Emit(ev); err != nil {
				log.Printf("sink error at event %d: %v", ev.Index, err)
			}
			if m.metrics != nil {
				m.metrics.EventEmitted()
			}
		}
		cancel()
		close(h.done)
		m.mu.Lock()
		if m.active == h {
			m.active = nil
		}
		if m.metrics != nil {
			m.metrics.RunFinished()
			// Report the count as it stands: a replaced run must not
			// zero the gauge out from under its successor.
			n := 0
			if m.active != nil {
				n = 1
			}
			m.metrics.SetActiveRuns(n)
		}
		m.mu.Unlock()
	}()
	return h, nil
}

// Stop cancels the live run, if any, and waits for all runs to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.active != nil {
		m.active.Cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}
