package api

import (
	"errors"
	"net/http"
	"strconv"

	"ayudame-ya/internal/catalog"
	"ayudame-ya/internal/dispatch"
	"ayudame-ya/internal/metrics"
	"ayudame-ya/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	registry *Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewSessionHandler(registry *Registry, m *metrics.Metrics, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{registry: registry, metrics: m, logger: logger}
}

type StartSessionRequest struct {
	URL         string `json:"url"`
	Zone        string `json:"zone"`
	NativeShare bool   `json:"nativeShare"`
}

// StartSession mounts a new page session for the calling visitor.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nv := NewVisit{
		VisitorID:   visitorID(c),
		PageURL:     req.URL,
		NativeShare: req.NativeShare,
	}
	if nv.PageURL == "" {
		nv.PageURL = pageURL(c.Request)
	}
	if req.Zone != "" {
		z, err := catalog.ParseZone(req.Zone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		nv.Zone = &z
	}

	v := h.registry.create(c.Request.Context(), nv)
	if v.session.State().WelcomeVisible {
		h.metrics.Popup("welcome", "shown")
	}
	p := v.payload()
	c.JSON(http.StatusCreated, gin.H{"id": v.session.ID(), "state": p.State, "intents": p.Intents})
}

// withVisit resolves :id and runs fn, answering with the resulting payload.
func (h *SessionHandler) withVisit(fn func(c *gin.Context, v *visit) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := h.registry.get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if !fn(c, v) {
			return
		}
		c.JSON(http.StatusOK, v.payload())
	}
}

// GetState returns the view state.
func (h *SessionHandler) GetState() gin.HandlerFunc {
	return h.withVisit(func(*gin.Context, *visit) bool { return true })
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	h.registry.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type SelectZoneRequest struct {
	Zone string `json:"zone" binding:"required"`
}

func (h *SessionHandler) SelectZone() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		var req SelectZoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}
		z, err := catalog.ParseZone(req.Zone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}
		v.session.SelectZone(z)
		return true
	})
}

// DismissWelcome hides the welcome popup. A failure to persist the flag is
// logged; the popup is hidden anyway.
func (h *SessionHandler) DismissWelcome() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		if err := v.session.DismissWelcome(c.Request.Context()); err != nil {
			h.logger.Warn("persisting welcome flag", zap.String("session", v.session.ID()), zap.Error(err))
		}
		h.metrics.Popup("welcome", "dismissed")
		return true
	})
}

// HideWelcome closes the welcome popup without remembering it.
func (h *SessionHandler) HideWelcome() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.session.HideWelcome()
		h.metrics.Popup("welcome", "hidden")
		return true
	})
}

func (h *SessionHandler) OpenEmergency() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.session.OpenEmergency()
		h.metrics.Popup("emergency", "opened")
		return true
	})
}

func (h *SessionHandler) CloseEmergency() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.session.CloseEmergency()
		h.metrics.Popup("emergency", "closed")
		return true
	})
}

func (h *SessionHandler) CloseRating() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.session.CloseRating()
		h.metrics.Popup("rating", "closed")
		return true
	})
}

// ContactAction dispatches :action on the :index-th contact of the selected
// zone, or of its urgent list with ?list=urgent.
func (h *SessionHandler) ContactAction() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		action, err := dispatch.ParseAction(c.Param("action"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}

		contacts := v.session.Contacts()
		if c.Query("list") == "urgent" {
			contacts = v.session.UrgentContacts()
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 0 || index >= len(contacts) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return false
		}

		if err := v.dispatcher.Perform(contacts[index], action); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, dispatch.ErrActionUnavailable) || errors.Is(err, dispatch.ErrNoDigits) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return false
		}
		return true
	})
}

func (h *SessionHandler) ShareApp() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.composer.ShareApp()
		return true
	})
}

type ShareFailureRequest struct {
	Reason string `json:"reason"`
}

// ShareFailure is reported by the page when the share sheet rejects.
func (h *SessionHandler) ShareFailure() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		var req ShareFailureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}
		v.composer.ReportShareFailure(req.Reason)
		return true
	})
}

func (h *SessionHandler) ShareViaMessaging() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.composer.ShareViaMessaging()
		return true
	})
}

func (h *SessionHandler) ShowQRCode() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.composer.ShowQRCode()
		return true
	})
}

func (h *SessionHandler) RequestSponsorship() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.composer.RequestSponsorship()
		return true
	})
}

func (h *SessionHandler) OpenSponsorForm() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.session.OpenSponsorForm()
		h.metrics.Popup("sponsor", "opened")
		return true
	})
}

func (h *SessionHandler) CloseSponsorForm() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		v.session.CloseSponsorForm()
		h.metrics.Popup("sponsor", "closed")
		return true
	})
}

func (h *SessionHandler) UpdateSponsorDraft() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		var draft session.SponsorDraft
		if err := c.ShouldBindJSON(&draft); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}
		v.session.UpdateSponsorDraft(draft)
		return true
	})
}

// SubmitSponsorForm submits the draft carried in the body.
func (h *SessionHandler) SubmitSponsorForm() gin.HandlerFunc {
	return h.withVisit(func(c *gin.Context, v *visit) bool {
		var draft session.SponsorDraft
		if err := c.ShouldBindJSON(&draft); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}
		v.session.UpdateSponsorDraft(draft)
		v.composer.SubmitSponsorForm(v.session)
		h.metrics.Popup("sponsor", "submitted")
		return true
	})
}
