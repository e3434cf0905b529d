package job

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/audiotext/logger"
)

// StopOutcome is the answer to a stop request.
type StopOutcome string

const (
	// NoActiveTask means no job was registered; nothing changed.
	NoActiveTask StopOutcome = "no_active_task"
	// Stopping means the active job's signal is set.
	Stopping StopOutcome = "stopping"
)

// Status is a point-in-time view of the gate.
type Status struct {
	Active        bool       `json:"active"`
	State         State      `json:"state"`
	JobID         string     `json:"job_id,omitempty"`
	StopRequested bool       `json:"stop_requested"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	LastOutcome   State      `json:"last_outcome,omitempty"`
}

// Gate admits at most one job at a time. The slot is a single-item channel;
// the mutex guards the registered signal and the lifecycle state.
type Gate struct {
	slot chan struct{}
	log  *logger.Logger

	mu      sync.Mutex
	current *Lease
	signal  *Signal
	state   State
	last    State
}

// NewGate creates an empty gate.
func NewGate(log *logger.Logger) *Gate {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gate{
		slot:  make(chan struct{}, 1),
		log:   log.WithComponent("gate"),
		state: StateIdle,
	}
}

// TryAcquire takes the slot without blocking. It returns false immediately
// when another job holds it.
func (g *Gate) TryAcquire() (*Lease, bool) {
	select {
	case g.slot <- struct{}{}:
	default:
		return nil, false
	}

	l := &Lease{gate: g, id: uuid.NewString(), started: time.Now()}
	g.mu.Lock()
	g.current = l
	g.signal = nil
	g.state = StateAdmitted
	g.mu.Unlock()

	g.log.Debug("job admitted", logger.Fields(logger.FieldJobID, l.id))
	return l, true
}

// Stop raises the active job's signal. It never blocks on the job and is
// safe to call at any time.
func (g *Gate) Stop() StopOutcome {
	g.mu.Lock()
	sig, l := g.signal, g.current
	g.mu.Unlock()

	if sig == nil {
		return NoActiveTask
	}
	if sig.Set() {
		g.log.Info("stop requested", logger.Fields(logger.FieldJobID, l.id))
	}
	return Stopping
}

// Active reports whether a job holds the slot.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current != nil
}

// Status returns a snapshot of the gate.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := Status{State: g.state, LastOutcome: g.last}
	if l := g.current; l != nil {
		started := l.started
		st.Active = true
		st.JobID = l.id
		st.StartedAt = &started
		st.StopRequested = g.signal != nil && g.signal.IsSet()
	}
	return st
}

func (g *Gate) transition(l *Lease, to State) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != l {
		g.log.Warn("state change from released lease ignored", logger.Fields(
			logger.FieldJobID, l.id, logger.FieldState, to.String()))
		return
	}
	if !CanTransition(g.state, to) {
		g.log.Warn("invalid job transition ignored", logger.Fields(
			logger.FieldJobID, l.id, "from", g.state.String(), "to", to.String()))
		return
	}
	g.state = to
}

// Lease is one admission. It must be released exactly once per admission;
// extra Release calls are no-ops.
type Lease struct {
	gate    *Gate
	id      string
	started time.Time
	once    sync.Once
}

// ID returns the job id assigned at admission.
func (l *Lease) ID() string { return l.id }

// StartedAt returns the admission time.
func (l *Lease) StartedAt() time.Time { return l.started }

// Register publishes sig as the active job's signal.
func (l *Lease) Register(sig *Signal) {
	g := l.gate
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == l {
		g.signal = sig
	}
}

// SetState moves the job to s. Invalid transitions are logged and ignored.
func (l *Lease) SetState(s State) {
	l.gate.transition(l, s)
}

// Release clears the registered signal and frees the slot.
func (l *Lease) Release() {
	l.once.Do(func() {
		g := l.gate
		g.mu.Lock()
		if g.current == l {
			if g.state.Terminal() {
				g.last = g.state
			} else {
				g.last = StateFailed
			}
			g.current = nil
			g.signal = nil
			g.state = StateIdle
		}
		g.mu.Unlock()
		<-g.slot

		g.log.Debug("job released", logger.Fields(
			logger.FieldJobID, l.id,
			logger.FieldDuration, time.Since(l.started).Milliseconds(),
		))
	})
}
