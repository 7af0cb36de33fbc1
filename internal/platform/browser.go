package platform

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// IntentKind tells the browser which primitive to run.
type IntentKind string

const (
	IntentNavigate  IntentKind = "navigate"  // location.href, used for tel: and mailto:
	IntentOpen      IntentKind = "open"      // window.open in a new tab
	IntentShare     IntentKind = "share"     // navigator.share
	IntentClipboard IntentKind = "clipboard" // navigator.clipboard.writeText
	IntentAlert     IntentKind = "alert"
)

// Intent is a capability invocation the browser performs on our behalf.
type Intent struct {
	Kind  IntentKind `json:"kind"`
	URL   string     `json:"url,omitempty"`
	Title string     `json:"title,omitempty"`
	Text  string     `json:"text,omitempty"`
}

// VisitorFlags persists flags for many visitors.
type VisitorFlags interface {
	Flag(ctx context.Context, visitorID, key string) (string, bool, error)
	SetFlag(ctx context.Context, visitorID, key, value string) error
}

// BrowserOptions describes the tab a session runs in.
type BrowserOptions struct {
	VisitorID   string
	PageURL     string
	NativeShare bool
}

// Browser implements Platform for one browser tab. Capability calls queue
// intents which the HTTP layer hands back to the page.
type Browser struct {
	opts  BrowserOptions
	flags VisitorFlags

	mu      sync.Mutex
	pending []Intent
}

func NewBrowser(flags VisitorFlags, opts BrowserOptions) *Browser {
	return &Browser{opts: opts, flags: flags}
}

func (b *Browser) push(in Intent) {
	b.mu.Lock()
	b.pending = append(b.pending, in)
	b.mu.Unlock()
}

// Drain returns the queued intents and empties the queue.
func (b *Browser) Drain() []Intent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	if out == nil {
		out = []Intent{}
	}
	return out
}

func (b *Browser) Dial(phone string) {
	b.push(Intent{Kind: IntentNavigate, URL: DialURL(phone)})
}

func (b *Browser) OpenMessagingApp(digits, text string) {
	b.push(Intent{Kind: IntentOpen, URL: MessagingURL(digits, text)})
}

func (b *Browser) OpenInNewContext(url string) {
	b.push(Intent{Kind: IntentOpen, URL: url})
}

func (b *Browser) NativeShareAvailable() bool {
	return b.opts.NativeShare
}

// NativeShare queues the share sheet. Its outcome is only known to the page,
// which reports rejections separately.
func (b *Browser) NativeShare(title, text, url string) error {
	b.push(Intent{Kind: IntentShare, Title: title, Text: text, URL: url})
	return nil
}

func (b *Browser) CopyToClipboard(text string) {
	b.push(Intent{Kind: IntentClipboard, Text: text})
}

func (b *Browser) ComposeEmail(to, subject, body string) {
	b.push(Intent{Kind: IntentNavigate, URL: MailtoURL(to, subject, body)})
}

func (b *Browser) Alert(message string) {
	b.push(Intent{Kind: IntentAlert, Text: message})
}

func (b *Browser) PersistedFlag(ctx context.Context, key string) (string, bool, error) {
	return b.flags.Flag(ctx, b.opts.VisitorID, key)
}

func (b *Browser) SetPersistedFlag(ctx context.Context, key, value string) error {
	return b.flags.SetFlag(ctx, b.opts.VisitorID, key, value)
}

func (b *Browser) CurrentURL() string {
	return b.opts.PageURL
}

// DialURL is the tel: link for phone, kept verbatim.
func DialURL(phone string) string {
	return "tel:" + phone
}

// MessagingURL opens a chat with digits, or with no recipient when digits is
// empty, optionally prefilled with text.
func MessagingURL(digits, text string) string {
	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + EncodeURIComponent(text)
	}
	return link
}

func MailtoURL(to, subject, body string) string {
	return "mailto:" + to + "?subject=" + EncodeURIComponent(subject) + "&body=" + EncodeURIComponent(body)
}

// EncodeURIComponent escapes s the way the browser function of the same
// name does for the characters we emit: spaces become %20, not '+'.
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
