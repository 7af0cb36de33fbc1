// Package session holds the per-tab view state: the selected zone, the four
// overlays and the sponsor form draft, plus the timers that drive the rating
// popup.
package session

import (
	"context"
	"sync"
	"time"

	"ayudame-ya/internal/catalog"
	"ayudame-ya/internal/platform"

	"go.uber.org/zap"
)

const (
	DefaultRatingShowAfter = 10 * time.Second
	DefaultRatingHideAfter = 25 * time.Second
)

// SponsorDraft is the sponsor form being filled in.
type SponsorDraft struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ViewState is a snapshot of everything the page shows besides static data.
type ViewState struct {
	Zone               catalog.Zone `json:"zone"`
	WelcomeVisible     bool         `json:"welcomeVisible"`
	EmergencyVisible   bool         `json:"emergencyVisible"`
	RatingVisible      bool         `json:"ratingVisible"`
	SponsorFormVisible bool         `json:"sponsorFormVisible"`
	SponsorDraft       SponsorDraft `json:"sponsorDraft"`
}

type Options struct {
	Clock           Clock
	RatingShowAfter time.Duration
	RatingHideAfter time.Duration

	// OnChange receives every new state, with the session lock held. It must
	// not call back into the session.
	OnChange func(id string, state ViewState)
	Logger   *zap.Logger
}

// Session is one mounted page, from load to teardown. All methods are safe
// for concurrent use; mutations are applied one at a time.
type Session struct {
	id       string
	flags    platform.FlagStore
	onChange func(string, ViewState)
	logger   *zap.Logger

	mu     sync.Mutex
	state  ViewState
	timers []Timer
	closed bool
}

// New starts a session. The welcome popup shows unless the visitor already
// dismissed it, and the rating popup timers start counting.
func New(ctx context.Context, id string, flags platform.FlagStore, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = RealClock
	}
	if opts.RatingShowAfter == 0 {
		opts.RatingShowAfter = DefaultRatingShowAfter
	}
	if opts.RatingHideAfter == 0 {
		opts.RatingHideAfter = DefaultRatingHideAfter
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Session{
		id:       id,
		flags:    flags,
		onChange: opts.OnChange,
		logger:   opts.Logger.With(zap.String("session", id)),
		state:    ViewState{Zone: catalog.DefaultZone},
	}

	_, seen, err := flags.PersistedFlag(ctx, platform.WelcomeFlagKey)
	if err != nil {
		s.logger.Warn("reading welcome flag", zap.Error(err))
	}
	s.state.WelcomeVisible = !seen

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = []Timer{
		opts.Clock.AfterFunc(opts.RatingShowAfter, func() {
			s.update(func(v *ViewState) { v.RatingVisible = true })
		}),
		opts.Clock.AfterFunc(opts.RatingHideAfter, func() {
			s.update(func(v *ViewState) { v.RatingVisible = false })
		}),
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

// State returns a copy of the current view state.
func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Zone() catalog.Zone {
	return s.State().Zone
}

// Contacts returns the contact list of the selected zone.
func (s *Session) Contacts() []catalog.Contact {
	return catalog.Contacts(s.Zone())
}

// UrgentContacts returns what the emergency overlay shows for the selected zone.
func (s *Session) UrgentContacts() []catalog.Contact {
	return catalog.UrgentContacts(s.Zone())
}

func (s *Session) update(fn func(*ViewState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateLocked(fn)
}

func (s *Session) updateLocked(fn func(*ViewState)) {
	if s.closed {
		return
	}
	prev := s.state
	fn(&s.state)
	if s.state != prev && s.onChange != nil {
		s.onChange(s.id, s.state)
	}
}

// SelectZone switches the active catalog. Nothing else changes.
func (s *Session) SelectZone(z catalog.Zone) {
	s.update(func(v *ViewState) { v.Zone = z })
}

// DismissWelcome hides the welcome popup and remembers it for future
// sessions of the same visitor. The popup stays hidden even if saving fails.
func (s *Session) DismissWelcome(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.updateLocked(func(v *ViewState) { v.WelcomeVisible = false })
	return s.flags.SetPersistedFlag(ctx, platform.WelcomeFlagKey, "true")
}

// HideWelcome hides the welcome popup for this session only. It shows again
// next time.
func (s *Session) HideWelcome() {
	s.update(func(v *ViewState) { v.WelcomeVisible = false })
}

func (s *Session) OpenEmergency() {
	s.update(func(v *ViewState) { v.EmergencyVisible = true })
}

func (s *Session) CloseEmergency() {
	s.update(func(v *ViewState) { v.EmergencyVisible = false })
}

// CloseRating hides the rating popup. The scheduled timers keep running.
func (s *Session) CloseRating() {
	s.update(func(v *ViewState) { v.RatingVisible = false })
}

func (s *Session) OpenSponsorForm() {
	s.update(func(v *ViewState) { v.SponsorFormVisible = true })
}

// CloseSponsorForm hides the form and keeps the draft.
func (s *Session) CloseSponsorForm() {
	s.update(func(v *ViewState) { v.SponsorFormVisible = false })
}

func (s *Session) UpdateSponsorDraft(d SponsorDraft) {
	s.update(func(v *ViewState) { v.SponsorDraft = d })
}

// CompleteSponsorForm closes the sponsor form and clears the draft,
// returning what was submitted.
func (s *Session) CompleteSponsorForm() SponsorDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	submitted := s.state.SponsorDraft
	s.updateLocked(func(v *ViewState) {
		v.SponsorFormVisible = false
		v.SponsorDraft = SponsorDraft{}
	})
	return submitted
}

// Close tears the session down. Pending timers are cancelled and no state
// change is reported after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
