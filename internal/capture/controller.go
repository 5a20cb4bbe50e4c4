// Package capture drives a single fitness-test capture session through
// setup, countdown, recording and results, reconciling the outcome with the
// external scoring backend.
//
// The session never ends in an error: a failed session start is tolerated
// and a failed scorecard is replaced by a synthetic result.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/claude/athletconnect/internal/scoring"
)

// Stage is the active step of a capture session.
type Stage string

const (
	StageSetup     Stage = "setup"
	StageCountdown Stage = "countdown"
	StageRecording Stage = "recording"
	StageResults   Stage = "results"
)

const (
	// CountdownStart is the number of ticks between start and recording.
	CountdownStart = 5
	// TickInterval is the period of countdown and elapsed-time ticks.
	TickInterval = time.Second

	endSessionTimeout = 5 * time.Second
)

// Backend is the scoring service a Controller reports to. *scoring.Client satisfies it.
type Backend interface {
	BeginSession(ctx context.Context, exerciseType string) (scoring.BeginResponse, error)
	Scorecard(ctx context.Context, exerciseType string, sessionID *string) (scoring.ScorecardResponse, error)
	EndSession(ctx context.Context, sessionID string) error
}

var _ Backend = (*scoring.Client)(nil)

// Result is the scorecard shown when a session reaches StageResults.
type Result struct {
	Score      float64 `json:"score"`
	Unit       string  `json:"unit"`
	Percentile float64 `json:"percentile"`
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	TestName                string    `json:"test"`
	ExerciseType            string    `json:"exercise_type"`
	Stage                   Stage     `json:"stage"`
	SessionID               *string   `json:"session_id"`
	CountdownRemaining      int       `json:"countdown_remaining"`
	ElapsedRecordingSeconds int       `json:"elapsed_recording_seconds"`
	Result                  *Result   `json:"result"`
	Fallback                bool      `json:"fallback"`
	Busy                    bool      `json:"busy"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Listener observes every committed change of a session.
// It is called without the controller lock held.
type Listener func(Snapshot)

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithRand replaces the random source used for fallback results.
func WithRand(r *rand.Rand) Option {
	return func(ctl *Controller) { ctl.rng = r }
}

// WithListener registers a change observer.
func WithListener(l Listener) Option {
	return func(ctl *Controller) { ctl.listener = l }
}

// Controller owns one capture session.
type Controller struct {
	backend  Backend
	clock    Clock
	rng      *rand.Rand
	listener Listener
	log      *slog.Logger

	ctx    context.Context // cancelled by Close
	cancel context.CancelFunc
	reset  chan struct{}
	calls  sync.WaitGroup

	mu         sync.Mutex
	s          Snapshot
	generation uint64
	inflight   int
	stopping   bool
	closed     bool
}

// NewController creates a controller in StageSetup for the given test name
// (usually the route parameter). The exercise type sent to the backend is
// the normalized test name.
func NewController(testName string, backend Backend, log *slog.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		backend: backend,
		clock:   RealClock{},
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		reset:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c.s = Snapshot{
		TestName:           testName,
		ExerciseType:       NormalizeExercise(testName),
		Stage:              StageSetup,
		CountdownRemaining: CountdownStart,
		UpdatedAt:          c.clock.Now(),
	}
	return c
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Run delivers clock ticks to Tick until ctx is done or the controller is closed.
func (c *Controller) Run(ctx context.Context) {
	t := c.clock.NewTicker(TickInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		case <-c.reset:
			t.Reset(TickInterval)
		case <-t.C():
			c.Tick()
		}
	}
}

// Start moves setup to countdown and asks the backend for a session id in
// the background. It reports whether the command was accepted.
func (c *Controller) Start() bool {
	c.mu.Lock()
	if c.closed || c.s.Stage != StageSetup || c.s.Busy {
		c.mu.Unlock()
		return false
	}
	c.s.Stage = StageCountdown
	c.s.CountdownRemaining = CountdownStart
	c.s.SessionID = nil
	c.beginCallLocked()
	gen := c.generation
	exercise := c.s.ExerciseType
	snap := c.commitLocked()
	c.calls.Add(1)
	c.mu.Unlock()

	c.notify(snap)
	c.restartTicks()

	go func() {
		defer c.calls.Done()
		var resp scoring.BeginResponse
		err := guard(func() (err error) {
			resp, err = c.backend.BeginSession(c.ctx, exercise)
			return err
		})
		c.finishBegin(gen, resp, err)
	}()
	return true
}

func (c *Controller) finishBegin(gen uint64, resp scoring.BeginResponse, err error) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		c.log.Warn("begin session failed, continuing without session", "exercise", c.s.ExerciseType, "error", err)
	case !bool(resp.Success):
		c.log.Warn("begin session rejected, continuing without session", "exercise", c.s.ExerciseType, "error", resp.Error)
	case resp.SessionID != "":
		id := resp.SessionID
		c.s.SessionID = &id
	}
	c.endCallLocked()
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Tick advances the countdown or the elapsed recording time by one second.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	switch c.s.Stage {
	case StageCountdown:
		if c.s.CountdownRemaining > 0 {
			c.s.CountdownRemaining--
		}
		if c.s.CountdownRemaining == 0 {
			c.s.Stage = StageRecording
			c.s.ElapsedRecordingSeconds = 0
		}
	case StageRecording:
		if c.stopping {
			c.mu.Unlock()
			return
		}
		c.s.ElapsedRecordingSeconds++
	default:
		c.mu.Unlock()
		return
	}
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Stop freezes the elapsed time and requests the scorecard in the
// background. The session reaches StageResults whether or not the backend
// answers. It reports whether the command was accepted.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	if c.closed || c.s.Stage != StageRecording || c.stopping {
		c.mu.Unlock()
		return false
	}
	c.stopping = true
	c.beginCallLocked()
	gen := c.generation
	exercise := c.s.ExerciseType
	var sessionID *string
	if c.s.SessionID != nil {
		id := *c.s.SessionID
		sessionID = &id
	}
	snap := c.commitLocked()
	c.calls.Add(1)
	c.mu.Unlock()

	c.notify(snap)

	go func() {
		defer c.calls.Done()
		var resp scoring.ScorecardResponse
		err := guard(func() (err error) {
			resp, err = c.backend.Scorecard(c.ctx, exercise, sessionID)
			return err
		})
		c.finishStop(gen, resp, err)
	}()
	return true
}

func (c *Controller) finishStop(gen uint64, resp scoring.ScorecardResponse, err error) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}

	var result Result
	fallback := false
	if err == nil && bool(resp.Success) {
		result = Result{
			Score:      float64(resp.Score),
			Unit:       UnitFor(c.s.TestName),
			Percentile: float64(resp.Percentile),
		}
	} else {
		if err == nil {
			err = fmt.Errorf("scorecard unsuccessful: %s", resp.Error)
		}
		c.log.Warn("scorecard failed, using fallback result", "exercise", c.s.ExerciseType, "test", c.s.TestName, "error", err)
		result = FallbackResult(c.rng, c.s.TestName)
		fallback = true
	}

	c.s.Stage = StageResults
	c.s.Result = &result
	c.s.Fallback = fallback
	c.stopping = false
	c.endCallLocked()
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Retake returns a finished session to StageSetup. It reports whether the
// command was accepted.
func (c *Controller) Retake() bool {
	c.mu.Lock()
	if c.closed || c.s.Stage != StageResults {
		c.mu.Unlock()
		return false
	}
	ended := c.s.SessionID
	c.generation++
	c.inflight = 0
	c.stopping = false
	c.s.Stage = StageSetup
	c.s.Result = nil
	c.s.Fallback = false
	c.s.ElapsedRecordingSeconds = 0
	c.s.CountdownRemaining = CountdownStart
	c.s.SessionID = nil
	c.s.Busy = false
	snap := c.commitLocked()
	if ended != nil {
		c.calls.Add(1)
	}
	c.mu.Unlock()

	c.notify(snap)
	if ended != nil {
		go c.endSession(*ended)
	}
	return true
}

// Close tears the session down. Pending backend responses are discarded
// and Run returns. Close waits for in-flight calls and is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	ended := c.s.SessionID
	if ended != nil {
		c.calls.Add(1)
	}
	c.mu.Unlock()

	if ended != nil {
		go c.endSession(*ended)
	}
	c.cancel()
	c.calls.Wait()
}

// Wait blocks until every backend call started so far has settled.
func (c *Controller) Wait() {
	c.calls.Wait()
}

// endSession tells the backend a session is over. The caller must have
// added it to c.calls while holding c.mu.
func (c *Controller) endSession(id string) {
	defer c.calls.Done()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), endSessionTimeout)
	defer cancel()
	if err := guard(func() error { return c.backend.EndSession(ctx, id) }); err != nil {
		c.log.Debug("end session failed", "session_id", id, "error", err)
	}
}

func (c *Controller) restartTicks() {
	select {
	case c.reset <- struct{}{}:
	default:
	}
}

func (c *Controller) beginCallLocked() {
	c.inflight++
	c.s.Busy = true
}

func (c *Controller) endCallLocked() {
	if c.inflight > 0 {
		c.inflight--
	}
	c.s.Busy = c.inflight > 0
}

func (c *Controller) commitLocked() Snapshot {
	c.s.UpdatedAt = c.clock.Now()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := c.s
	if c.s.SessionID != nil {
		id := *c.s.SessionID
		snap.SessionID = &id
	}
	if c.s.Result != nil {
		r := *c.s.Result
		snap.Result = &r
	}
	return snap
}

func (c *Controller) notify(snap Snapshot) {
	if c.listener != nil {
		c.listener(snap)
	}
}

// guard turns a panicking backend call into an error so the session's
// busy flag is always cleared.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return fn()
}

// FormatElapsed renders seconds as m:ss.
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
