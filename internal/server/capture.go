package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/athletconnect/internal/capture"
	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
)

const (
	// maxCaptureSessions bounds the number of concurrently hosted sessions.
	maxCaptureSessions = 256
	recordTimeout      = 5 * time.Second
)

var errTooManySessions = errors.New("too many capture sessions")

// captureSession is one server-hosted controller and the goroutine feeding it ticks.
type captureSession struct {
	id        string
	athleteID string
	ctl       *capture.Controller
	cancel    context.CancelFunc
	done      chan struct{}

	mu       sync.Mutex
	recorded bool
}

type captureRegistry struct {
	backend capture.Backend
	catalog catalog.Provider
	log     *slog.Logger
	opts    []capture.Option

	mu       sync.Mutex
	sessions map[string]*captureSession
}

func newCaptureRegistry(backend capture.Backend, provider catalog.Provider, log *slog.Logger) *captureRegistry {
	return &captureRegistry{
		backend:  backend,
		catalog:  provider,
		log:      log,
		sessions: make(map[string]*captureSession),
	}
}

// create starts a session for testName and its tick loop.
func (g *captureRegistry) create(testName, athleteID string) (*captureSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sessions) >= maxCaptureSessions {
		return nil, errTooManySessions
	}

	sess := &captureSession{
		id:        uuid.NewString(),
		athleteID: athleteID,
		done:      make(chan struct{}),
	}
	log := g.log.With("capture_id", sess.id)
	opts := append([]capture.Option{capture.WithListener(func(snap capture.Snapshot) {
		g.observe(sess, snap)
	})}, g.opts...)
	sess.ctl = capture.NewController(testName, g.backend, log, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	go func() {
		defer close(sess.done)
		sess.ctl.Run(ctx)
	}()

	g.sessions[sess.id] = sess
	return sess, nil
}

func (g *captureRegistry) get(id string) (*captureSession, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.sessions[id]
	return sess, ok
}

// remove closes and forgets a session. It reports whether the id existed.
func (g *captureRegistry) remove(id string) bool {
	g.mu.Lock()
	sess, ok := g.sessions[id]
	delete(g.sessions, id)
	g.mu.Unlock()
	if ok {
		sess.close()
	}
	return ok
}

func (g *captureRegistry) closeAll() {
	g.mu.Lock()
	sessions := g.sessions
	g.sessions = make(map[string]*captureSession)
	g.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}
}

func (s *captureSession) close() {
	s.ctl.Close()
	s.cancel()
	<-s.done
}

// observe records a session's result against its athlete once per attempt.
func (g *captureRegistry) observe(sess *captureSession, snap capture.Snapshot) {
	if sess.athleteID == "" {
		return
	}
	sess.mu.Lock()
	switch {
	case snap.Stage == capture.StageSetup:
		sess.recorded = false
		sess.mu.Unlock()
		return
	case snap.Stage != capture.StageResults || snap.Result == nil || sess.recorded:
		sess.mu.Unlock()
		return
	}
	sess.recorded = true
	sess.mu.Unlock()

	result := models.TestResult{
		TestName:   snap.TestName,
		Score:      snap.Result.Score,
		Unit:       snap.Result.Unit,
		Date:       snap.UpdatedAt.Format(time.DateOnly),
		Percentile: snap.Result.Percentile,
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := g.catalog.RecordResult(ctx, sess.athleteID, result); err != nil {
		g.log.Warn("recording capture result failed", "capture_id", sess.id, "athlete_id", sess.athleteID, "error", err)
		return
	}
	g.log.Info("capture result recorded", "capture_id", sess.id, "athlete_id", sess.athleteID,
		"test", result.TestName, "score", result.Score, "fallback", snap.Fallback)
}

type createCaptureRequest struct {
	Test      string `json:"test"`
	AthleteID string `json:"athlete_id"`
}

type captureResponse struct {
	ID        string `json:"id"`
	AthleteID string `json:"athlete_id,omitempty"`
	capture.Snapshot
	Elapsed string `json:"elapsed"`
}

func newCaptureResponse(sess *captureSession, snap capture.Snapshot) captureResponse {
	return captureResponse{
		ID:        sess.id,
		AthleteID: sess.athleteID,
		Snapshot:  snap,
		Elapsed:   capture.FormatElapsed(snap.ElapsedRecordingSeconds),
	}
}

func (s *Server) handleCreateCapture(w http.ResponseWriter, r *http.Request) {
	var req createCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Test == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "test is required"})
		return
	}
	if req.AthleteID != "" {
		if _, err := s.catalog.Athlete(r.Context(), req.AthleteID); err != nil {
			s.writeError(w, err)
			return
		}
	}

	sess, err := s.captures.create(req.Test, req.AthleteID)
	if err != nil {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("capture session created", "capture_id", sess.id, "test", req.Test, "athlete_id", req.AthleteID)
	writeJSON(w, http.StatusCreated, newCaptureResponse(sess, sess.ctl.Snapshot()))
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.captureFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCaptureResponse(sess, sess.ctl.Snapshot()))
}

func (s *Server) handleCaptureStart(w http.ResponseWriter, r *http.Request) {
	s.captureCommand(w, r, "start", (*capture.Controller).Start)
}

func (s *Server) handleCaptureStop(w http.ResponseWriter, r *http.Request) {
	s.captureCommand(w, r, "stop", (*capture.Controller).Stop)
}

func (s *Server) handleCaptureRetake(w http.ResponseWriter, r *http.Request) {
	s.captureCommand(w, r, "retake", (*capture.Controller).Retake)
}

// captureCommand applies cmd and replies 202 with the resulting snapshot, or
// 409 when the session's stage does not allow the command.
func (s *Server) captureCommand(w http.ResponseWriter, r *http.Request, name string, cmd func(*capture.Controller) bool) {
	sess, ok := s.captureFromRequest(w, r)
	if !ok {
		return
	}
	accepted := cmd(sess.ctl)
	resp := newCaptureResponse(sess, sess.ctl.Snapshot())
	if !accepted {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   name + " not allowed in stage " + string(resp.Stage),
			"session": resp,
		})
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleDeleteCapture(w http.ResponseWriter, r *http.Request) {
	if !s.captures.remove(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "capture session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) captureFromRequest(w http.ResponseWriter, r *http.Request) (*captureSession, bool) {
	sess, ok := s.captures.get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "capture session not found"})
	}
	return sess, ok
}
