// Package dispatch turns a contact and a requested action into a platform
// capability call.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"ayudame-ya/internal/catalog"
	"ayudame-ya/internal/platform"

	"go.uber.org/zap"
)

// CountryCode prefixes messaging-app numbers (Argentina).
const CountryCode = "54"

var (
	ErrActionUnavailable = errors.New("action not available for contact")
	ErrUnknownAction     = errors.New("unknown action")
	ErrNoDigits          = errors.New("phone has no digits")
)

type Action string

const (
	ActionCall    Action = "call"
	ActionMessage Action = "message"
	ActionOpen    Action = "open"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(s)); a {
	case ActionCall, ActionMessage, ActionOpen:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Capabilities is the subset of the platform the dispatcher needs.
type Capabilities interface {
	platform.Telephony
	platform.Messaging
	platform.Navigator
}

// Recorder observes dispatched actions.
type Recorder interface {
	ActionDispatched(action string)
}

type Dispatcher struct {
	caps     Capabilities
	recorder Recorder
	logger   *zap.Logger
}

func New(caps Capabilities, recorder Recorder, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{caps: caps, recorder: recorder, logger: logger}
}

func (d *Dispatcher) record(a Action) {
	if d.recorder != nil {
		d.recorder.ActionDispatched(string(a))
	}
}

// Call dials the phone string exactly as written.
func (d *Dispatcher) Call(phone string) {
	d.logger.Debug("dial", zap.String("phone", phone))
	d.caps.Dial(phone)
	d.record(ActionCall)
}

// Message opens a chat with the number in international form.
func (d *Dispatcher) Message(phone string) error {
	digits := MessagingDigits(phone)
	if digits == "" {
		return fmt.Errorf("message %q: %w", phone, ErrNoDigits)
	}
	d.logger.Debug("open messaging app", zap.String("digits", digits))
	d.caps.OpenMessagingApp(digits, "")
	d.record(ActionMessage)
	return nil
}

func (d *Dispatcher) OpenExternal(url string) {
	d.logger.Debug("open external", zap.String("url", url))
	d.caps.OpenInNewContext(url)
	d.record(ActionOpen)
}

// Perform runs action against c, refusing actions the contact does not offer.
func (d *Dispatcher) Perform(c catalog.Contact, action Action) error {
	switch r := c.Reach.(type) {
	case catalog.Dialable:
		switch {
		case action == ActionCall:
			d.Call(r.Phone)
			return nil
		case action == ActionMessage && r.Messaging:
			return d.Message(r.Phone)
		}
	case catalog.ExternalLink:
		if action == ActionOpen {
			d.OpenExternal(r.URL)
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", action, c.Name, ErrActionUnavailable)
}

// MessagingDigits strips every non-digit from phone and prepends CountryCode.
// It returns "" when phone has no digits at all.
func MessagingDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return CountryCode + b.String()
}
