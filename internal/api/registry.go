package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"ayudame-ya/internal/catalog"
	"ayudame-ya/internal/dispatch"
	"ayudame-ya/internal/metrics"
	"ayudame-ya/internal/platform"
	"ayudame-ya/internal/session"
	"ayudame-ya/internal/share"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errSessionNotFound = errors.New("session not found")

// Pages reaches the open pages of a session.
type Pages interface {
	Publish(sessionID, eventType string, data interface{})
	Connections(sessionID string) int
	Disconnect(sessionID string)
}

// visit bundles a session with the browser tab it runs in.
type visit struct {
	session    *session.Session
	browser    *platform.Browser
	dispatcher *dispatch.Dispatcher
	composer   *share.Composer
	lastSeen   time.Time // guarded by Registry.mu
}

// payload returns the current state plus whatever the browser must do.
func (v *visit) payload() sessionResponse {
	return sessionResponse{State: v.session.State(), Intents: v.browser.Drain()}
}

type sessionResponse struct {
	State   session.ViewState `json:"state"`
	Intents []platform.Intent `json:"intents"`
}

// RegistryOptions configures the sessions a Registry creates.
type RegistryOptions struct {
	Flags           platform.VisitorFlags
	Pages           Pages
	Metrics         *metrics.Metrics
	Clock           session.Clock
	RatingShowAfter time.Duration
	RatingHideAfter time.Duration
	Logger          *zap.Logger
}

// Registry owns the live sessions of the process.
type Registry struct {
	opts   RegistryOptions
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	visits map[string]*visit
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Registry{
		opts:   opts,
		logger: opts.Logger,
		now:    time.Now,
		visits: make(map[string]*visit),
	}
}

// NewVisit describes the tab starting a session.
type NewVisit struct {
	VisitorID   string
	PageURL     string
	NativeShare bool
	Zone        *catalog.Zone
}

// create starts a session for the given tab.
func (r *Registry) create(ctx context.Context, nv NewVisit) *visit {
	id := uuid.NewString()
	browser := platform.NewBrowser(r.opts.Flags, platform.BrowserOptions{
		VisitorID:   nv.VisitorID,
		PageURL:     nv.PageURL,
		NativeShare: nv.NativeShare,
	})
	logger := r.logger.With(zap.String("session", id))

	var onChange func(string, session.ViewState)
	if r.opts.Pages != nil {
		onChange = func(id string, state session.ViewState) {
			r.opts.Pages.Publish(id, "view_state", state)
		}
	}
	s := session.New(ctx, id, browser, session.Options{
		Clock:           r.opts.Clock,
		RatingShowAfter: r.opts.RatingShowAfter,
		RatingHideAfter: r.opts.RatingHideAfter,
		OnChange:        onChange,
		Logger:          r.logger,
	})
	if nv.Zone != nil {
		s.SelectZone(*nv.Zone)
	}

	v := &visit{
		session:    s,
		browser:    browser,
		dispatcher: dispatch.New(browser, r.opts.Metrics, logger),
		composer:   share.NewComposer(browser, r.opts.Metrics, logger),
	}

	r.mu.Lock()
	v.lastSeen = r.now()
	r.visits[id] = v
	r.mu.Unlock()

	r.opts.Metrics.SessionStarted()
	logger.Debug("session started", zap.String("visitor", nv.VisitorID))
	return v
}

// get returns a live session and marks it as seen.
func (r *Registry) get(id string) (*visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visits[id]
	if !ok {
		return nil, errSessionNotFound
	}
	v.lastSeen = r.now()
	return v, nil
}

// Touch marks a session as seen. Unknown sessions are ignored.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.visits[id]; ok {
		v.lastSeen = r.now()
	}
}

// Close tears a session down and disconnects its pages. Closing an unknown
// session is a no-op.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	v, ok := r.visits[id]
	delete(r.visits, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	v.session.Close()
	if r.opts.Pages != nil {
		r.opts.Pages.Disconnect(id)
	}
	r.opts.Metrics.SessionEnded()
	r.logger.Debug("session closed", zap.String("session", id))
}

// Reap closes the sessions not seen for longer than idle. A session with an
// open page connection is never idle.
func (r *Registry) Reap(idle time.Duration) int {
	now := r.now()
	cutoff := now.Add(-idle)
	var stale []string
	r.mu.Lock()
	for id, v := range r.visits {
		if r.opts.Pages != nil && r.opts.Pages.Connections(id) > 0 {
			v.lastSeen = now
			continue
		}
		if v.lastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()
	for _, id := range stale {
		r.Close(id)
	}
	return len(stale)
}

// RunReaper calls Reap every interval until ctx is done.
func (r *Registry) RunReaper(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Reap(idle); n > 0 {
				r.logger.Info("reaped idle sessions", zap.Int("count", n))
			}
		}
	}
}

// CloseAll tears down every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.visits))
	for id := range r.visits {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Close(id)
	}
}

// Len counts the live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visits)
}
