package api

import (
	"errors"
	"net/http"
	"testing"

	"ayudame-ya/internal/platform"
	"ayudame-ya/internal/session"
	"ayudame-ya/internal/share"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://ayudame.test/"

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + id + suffix
}

func TestStartSession(t *testing.T) {
	app := newTestApp(t)

	resp, cookies := app.start(t, StartSessionRequest{URL: testURL})
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "CABA", resp.State.Zone)
	assert.True(t, resp.State.WelcomeVisible)
	assert.False(t, resp.State.EmergencyVisible)
	assert.False(t, resp.State.RatingVisible)
	assert.False(t, resp.State.SponsorFormVisible)
	assert.Empty(t, resp.Intents)
	require.Len(t, cookies, 1)
	assert.Equal(t, visitorCookie, cookies[0].Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.metrics.SessionsActive))
}

func TestStartSessionWithZone(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.start(t, StartSessionRequest{URL: testURL, Zone: "pba"})
	assert.Equal(t, "PBA", resp.State.Zone)

	w := app.do(t, http.MethodPost, "/api/sessions", StartSessionRequest{Zone: "Cordoba"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWelcomeDismissedOncePerVisitor(t *testing.T) {
	app := newTestApp(t)

	first, cookies := app.start(t, StartSessionRequest{URL: testURL})
	code, p := app.call(t, http.MethodPost, sessionPath(first.ID, "/welcome/dismiss"), nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, p.State.WelcomeVisible)

	again, _ := app.start(t, StartSessionRequest{URL: testURL}, cookies...)
	assert.False(t, again.State.WelcomeVisible)

	stranger, _ := app.start(t, StartSessionRequest{URL: testURL})
	assert.True(t, stranger.State.WelcomeVisible)
}

func TestWelcomeHiddenWithoutDismissing(t *testing.T) {
	app := newTestApp(t)

	first, cookies := app.start(t, StartSessionRequest{URL: testURL})
	code, p := app.call(t, http.MethodPost, sessionPath(first.ID, "/welcome/hide"), nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, p.State.WelcomeVisible)

	again, _ := app.start(t, StartSessionRequest{URL: testURL}, cookies...)
	assert.True(t, again.State.WelcomeVisible)
}

func TestWelcomeDismissSurvivesStoreFailure(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	app.flags.err = errors.New("disk full")
	code, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/welcome/dismiss"), nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, p.State.WelcomeVisible)
}

func TestSelectZone(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	code, p := app.call(t, http.MethodPut, sessionPath(resp.ID, "/zone"), SelectZoneRequest{Zone: "PBA"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PBA", p.State.Zone)
	assert.True(t, p.State.WelcomeVisible, "selecting a zone touches nothing else")

	code, _ = app.call(t, http.MethodPut, sessionPath(resp.ID, "/zone"), SelectZoneRequest{Zone: "Mendoza"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEmergencyOverlay(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	_, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/emergency/open"), nil)
	assert.True(t, p.State.EmergencyVisible)

	_, p = app.call(t, http.MethodPost, sessionPath(resp.ID, "/emergency/close"), nil)
	assert.False(t, p.State.EmergencyVisible)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.metrics.Popups.WithLabelValues("emergency", "opened")))
}

func TestRatingPopupTimeline(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	app.clock.fire(session.DefaultRatingShowAfter)
	_, p := app.call(t, http.MethodGet, sessionPath(resp.ID, ""), nil)
	assert.True(t, p.State.RatingVisible)

	_, p = app.call(t, http.MethodPost, sessionPath(resp.ID, "/rating/close"), nil)
	assert.False(t, p.State.RatingVisible)

	app.clock.fire(session.DefaultRatingHideAfter)
	_, p = app.call(t, http.MethodGet, sessionPath(resp.ID, ""), nil)
	assert.False(t, p.State.RatingVisible)
}

func TestContactActions(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	tests := []struct {
		name   string
		path   string
		status int
		intent platform.Intent
	}{
		{"call", "/contacts/0/call", http.StatusOK, platform.Intent{Kind: platform.IntentNavigate, URL: "tel:107"}},
		{"message", "/contacts/5/message", http.StatusOK, platform.Intent{Kind: platform.IntentOpen, URL: "https://wa.me/54144"}},
		{"open link", "/contacts/11/open", http.StatusOK, platform.Intent{Kind: platform.IntentOpen, URL: "https://farmacias.com.ar"}},
		{"urgent list", "/contacts/2/call?list=urgent", http.StatusOK, platform.Intent{Kind: platform.IntentNavigate, URL: "tel:100"}},
		{"no messaging", "/contacts/0/message", http.StatusConflict, platform.Intent{}},
		{"call a link", "/contacts/11/call", http.StatusConflict, platform.Intent{}},
		{"out of range", "/contacts/12/call", http.StatusNotFound, platform.Intent{}},
		{"urgent out of range", "/contacts/3/call?list=urgent", http.StatusNotFound, platform.Intent{}},
		{"not a number", "/contacts/x/call", http.StatusNotFound, platform.Intent{}},
		{"unknown action", "/contacts/0/fax", http.StatusBadRequest, platform.Intent{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, p := app.call(t, http.MethodPost, sessionPath(resp.ID, tt.path), nil)
			require.Equal(t, tt.status, code, p.Error)
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, p.Error)
				return
			}
			assert.Equal(t, []platform.Intent{tt.intent}, p.Intents)
		})
	}
}

func TestContactActionsFollowZone(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL, Zone: "PBA"})

	_, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/contacts/0/call?list=urgent"), nil)
	assert.Equal(t, []platform.Intent{{Kind: platform.IntentNavigate, URL: "tel:911"}}, p.Intents)
}

func TestShareApp(t *testing.T) {
	app := newTestApp(t)

	t.Run("clipboard fallback", func(t *testing.T) {
		resp, _ := app.start(t, StartSessionRequest{URL: testURL})
		_, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/share"), nil)
		assert.Equal(t, []platform.Intent{
			{Kind: platform.IntentClipboard, Text: testURL},
			{Kind: platform.IntentAlert, Text: share.LinkCopiedNotice},
		}, p.Intents)
	})

	t.Run("native share", func(t *testing.T) {
		resp, _ := app.start(t, StartSessionRequest{URL: testURL, NativeShare: true})
		_, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/share"), nil)
		assert.Equal(t, []platform.Intent{
			{Kind: platform.IntentShare, Title: share.ShareTitle, Text: share.ShareText, URL: testURL},
		}, p.Intents)

		code, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/share/failure"), ShareFailureRequest{Reason: "AbortError"})
		assert.Equal(t, http.StatusOK, code)
		assert.Empty(t, p.Intents, "a rejected share does not fall back")
	})
}

func TestShareViaMessagingAndQR(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	_, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/share/messaging"), nil)
	require.Len(t, p.Intents, 1)
	assert.Equal(t, platform.IntentOpen, p.Intents[0].Kind)
	assert.Equal(t, "https://wa.me/?text="+platform.EncodeURIComponent(share.MessagingPromo+testURL), p.Intents[0].URL)

	_, p = app.call(t, http.MethodPost, sessionPath(resp.ID, "/share/qr"), nil)
	assert.Equal(t, []platform.Intent{{Kind: platform.IntentOpen, URL: share.QRCodeURL(testURL)}}, p.Intents)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.metrics.Shares.WithLabelValues(share.ModeQR)))
}

func TestSponsorFlow(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	_, p := app.call(t, http.MethodPost, sessionPath(resp.ID, "/sponsor/mail"), nil)
	require.Len(t, p.Intents, 1)
	assert.Equal(t, platform.IntentNavigate, p.Intents[0].Kind)
	assert.Contains(t, p.Intents[0].URL, "mailto:"+share.SponsorAddress+"?subject=")

	_, p = app.call(t, http.MethodPost, sessionPath(resp.ID, "/sponsor/open"), nil)
	assert.True(t, p.State.SponsorFormVisible)

	draft := session.SponsorDraft{Name: "Ana", Email: "ana@example.com", Message: "Hola"}
	_, p = app.call(t, http.MethodPut, sessionPath(resp.ID, "/sponsor/draft"), draft)
	assert.Equal(t, draft, p.State.SponsorDraft)

	_, p = app.call(t, http.MethodPost, sessionPath(resp.ID, "/sponsor/close"), nil)
	assert.False(t, p.State.SponsorFormVisible)
	assert.Equal(t, draft, p.State.SponsorDraft, "closing keeps the draft")

	app.call(t, http.MethodPost, sessionPath(resp.ID, "/sponsor/open"), nil)
	_, p = app.call(t, http.MethodPost, sessionPath(resp.ID, "/sponsor/submit"), draft)
	assert.False(t, p.State.SponsorFormVisible)
	assert.Equal(t, session.SponsorDraft{}, p.State.SponsorDraft)
	assert.Equal(t, []platform.Intent{{Kind: platform.IntentAlert, Text: share.SponsorThanks}}, p.Intents)
}

func TestUnknownSession(t *testing.T) {
	app := newTestApp(t)

	code, p := app.call(t, http.MethodPost, sessionPath("missing", "/emergency/open"), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, errSessionNotFound.Error(), p.Error)
}

func TestEndSession(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.start(t, StartSessionRequest{URL: testURL})

	w := app.do(t, http.MethodDelete, sessionPath(resp.ID, ""), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	code, _ := app.call(t, http.MethodGet, sessionPath(resp.ID, ""), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 0.0, testutil.ToFloat64(app.metrics.SessionsActive))

	w = app.do(t, http.MethodDelete, sessionPath(resp.ID, ""), nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "ending twice is harmless")
	assert.Equal(t, 0.0, testutil.ToFloat64(app.metrics.SessionsActive))
}
