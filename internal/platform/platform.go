// Package platform declares the host capabilities the app calls into and
// provides Browser, the implementation backed by the user's browser tab.
package platform

import "context"

// WelcomeFlagKey marks that the visitor dismissed the welcome popup.
const WelcomeFlagKey = "ayudame-ya-welcome"

type Telephony interface {
	Dial(phone string)
}

// Messaging opens a chat composition. An empty digits value opens the
// composer without a recipient; an empty text opens it without a draft.
type Messaging interface {
	OpenMessagingApp(digits, text string)
}

type Navigator interface {
	OpenInNewContext(url string)
}

// Sharer is the native share sheet. NativeShare must only be called when
// NativeShareAvailable reports true.
type Sharer interface {
	NativeShareAvailable() bool
	NativeShare(title, text, url string) error
}

type Clipboard interface {
	CopyToClipboard(text string)
}

type Mailer interface {
	ComposeEmail(to, subject, body string)
}

// Notifier surfaces a short confirmation message to the user.
type Notifier interface {
	Alert(message string)
}

// FlagStore is the persistent key-value flag storage of one visitor.
type FlagStore interface {
	PersistedFlag(ctx context.Context, key string) (value string, ok bool, err error)
	SetPersistedFlag(ctx context.Context, key, value string) error
}

type Locator interface {
	CurrentURL() string
}

// Platform is every capability together.
type Platform interface {
	Telephony
	Messaging
	Navigator
	Sharer
	Clipboard
	Mailer
	Notifier
	FlagStore
	Locator
}
