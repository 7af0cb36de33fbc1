// Package share builds the outbound share and sponsorship payloads.
package share

import (
	"ayudame-ya/internal/platform"
	"ayudame-ya/internal/session"

	"go.uber.org/zap"
)

const (
	ShareTitle       = "Ayúdame Ya - Teléfonos de emergencia"
	ShareText        = "App gratuita con teléfonos de emergencia para Buenos Aires"
	MessagingPromo   = "🚨 Ayúdame Ya - App gratuita con teléfonos de emergencia para Buenos Aires: "
	LinkCopiedNotice = "¡Link copiado al portapapeles!"

	SponsorAddress = "diego.rotryng.trad@gmail.com"
	SponsorSubject = "Quiero patrocinar Ayúdame Ya"
	SponsorBody    = "Hola, me interesa patrocinar la app Ayúdame Ya. Por favor contactenme para más información."
	SponsorThanks  = "¡Gracias por tu interés! Te contactaremos pronto."

	qrEndpoint = "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data="
)

// Share modes reported to the Recorder.
const (
	ModeNative    = "native"
	ModeClipboard = "clipboard"
	ModeMessaging = "messaging"
	ModeQR        = "qr"
)

type Recorder interface {
	Shared(mode string)
}

// SponsorForm is the part of a session the sponsor form submission touches.
type SponsorForm interface {
	CompleteSponsorForm() session.SponsorDraft
}

type Composer struct {
	platform platform.Platform
	recorder Recorder
	logger   *zap.Logger
}

func NewComposer(p platform.Platform, recorder Recorder, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{platform: p, recorder: recorder, logger: logger}
}

func (c *Composer) record(mode string) {
	if c.recorder != nil {
		c.recorder.Shared(mode)
	}
}

// ShareApp opens the native share sheet, or copies the page URL when the
// platform has none. A failing share is logged and nothing else happens.
func (c *Composer) ShareApp() {
	url := c.platform.CurrentURL()
	if !c.platform.NativeShareAvailable() {
		c.platform.CopyToClipboard(url)
		c.platform.Alert(LinkCopiedNotice)
		c.record(ModeClipboard)
		return
	}
	if err := c.platform.NativeShare(ShareTitle, ShareText, url); err != nil {
		c.logger.Info("error sharing", zap.Error(err))
		return
	}
	c.record(ModeNative)
}

// ReportShareFailure records a share sheet rejection seen by the page,
// including the user cancelling it.
func (c *Composer) ReportShareFailure(reason string) {
	c.logger.Info("error sharing", zap.String("reason", reason))
}

// MessagingText is the promo sent along with pageURL.
func MessagingText(pageURL string) string {
	return MessagingPromo + pageURL
}

// ShareViaMessaging opens the messaging app with the promo text and no
// recipient.
func (c *Composer) ShareViaMessaging() {
	c.platform.OpenMessagingApp("", MessagingText(c.platform.CurrentURL()))
	c.record(ModeMessaging)
}

// QRCodeURL is the scannable image of pageURL.
func QRCodeURL(pageURL string) string {
	return qrEndpoint + platform.EncodeURIComponent(pageURL)
}

func (c *Composer) ShowQRCode() {
	c.platform.OpenInNewContext(QRCodeURL(c.platform.CurrentURL()))
	c.record(ModeQR)
}

// RequestSponsorship opens a pre-filled mail to the maintainers.
func (c *Composer) RequestSponsorship() {
	c.platform.ComposeEmail(SponsorAddress, SponsorSubject, SponsorBody)
}

// SubmitSponsorForm accepts whatever draft the form holds. Nothing is
// transmitted.
func (c *Composer) SubmitSponsorForm(form SponsorForm) {
	draft := form.CompleteSponsorForm()
	c.logger.Info("sponsor form submitted",
		zap.Bool("has_name", draft.Name != ""),
		zap.Bool("has_email", draft.Email != ""),
		zap.Int("message_len", len(draft.Message)))
	c.platform.Alert(SponsorThanks)
}
