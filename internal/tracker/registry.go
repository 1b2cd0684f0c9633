package tracker

import (
	"sync"

	"go.uber.org/zap"
)

// Registry owns one running tracker per active session. Each tracker gets its
// own timer tied to its own lifecycle; there is no shared timer state between
// sessions.
type Registry struct {
	cfg Config
	log *zap.Logger

	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewRegistry returns a registry that creates trackers from cfg on demand.
func NewRegistry(cfg Config, log *zap.Logger) *Registry {
	return &Registry{
		cfg:      cfg,
		log:      log,
		trackers: make(map[string]*Tracker),
	}
}

// Get returns the tracker for the session, creating and starting one on
// first use.
func (r *Registry) Get(sessionID string) (*Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trackers[sessionID]; ok {
		return t, nil
	}
	t, err := New(sessionID, r.cfg, r.log)
	if err != nil {
		return nil, err
	}
	t.Start()
	r.trackers[sessionID] = t
	return t, nil
}

// Lookup returns the tracker for the session if one is running.
func (r *Registry) Lookup(sessionID string) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[sessionID]
	return t, ok
}

// Stop ends the session: the tracker is removed, its timer cancelled and its
// buffer flushed one last time. Stopping an unknown session is a no-op.
func (r *Registry) Stop(sessionID string) {
	r.mu.Lock()
	t, ok := r.trackers[sessionID]
	delete(r.trackers, sessionID)
	r.mu.Unlock()

	if ok {
		t.Stop()
	}
}

// StopAll ends every active session, flushing each buffer.
func (r *Registry) StopAll() {
	r.mu.Lock()
	trackers := make([]*Tracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		trackers = append(trackers, t)
	}
	r.trackers = make(map[string]*Tracker)
	r.mu.Unlock()

	for _, t := range trackers {
		t.Stop()
	}
}
