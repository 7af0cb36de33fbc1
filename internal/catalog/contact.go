package catalog

import "encoding/json"

// Reach is how a contact is reached. It is either Dialable or ExternalLink.
type Reach interface {
	isReach()
}

// Dialable is a contact reached by phone. Phone is never empty.
type Dialable struct {
	Phone     string
	Messaging bool // also reachable through the messaging app
}

// ExternalLink is a contact reached by opening a website. URL is never empty.
type ExternalLink struct {
	URL string
}

func (Dialable) isReach()     {}
func (ExternalLink) isReach() {}

// Contact is one emergency or service entry of a zone catalog.
type Contact struct {
	Emoji  string
	Name   string
	Urgent bool
	Reach  Reach
}

func phone(emoji, name, number string) Contact {
	if number == "" {
		panic("catalog: dialable contact " + name + " without phone")
	}
	return Contact{Emoji: emoji, Name: name, Reach: Dialable{Phone: number}}
}

func urgent(emoji, name, number string) Contact {
	c := phone(emoji, name, number)
	c.Urgent = true
	return c
}

func withMessaging(emoji, name, number string) Contact {
	c := phone(emoji, name, number)
	c.Reach = Dialable{Phone: number, Messaging: true}
	return c
}

func link(emoji, name, url string) Contact {
	if url == "" {
		panic("catalog: external contact " + name + " without url")
	}
	return Contact{Emoji: emoji, Name: name, Reach: ExternalLink{URL: url}}
}

// Phone returns the dial string, or "" for external links.
func (c Contact) Phone() string {
	if d, ok := c.Reach.(Dialable); ok {
		return d.Phone
	}
	return ""
}

func (c Contact) HasMessaging() bool {
	d, ok := c.Reach.(Dialable)
	return ok && d.Messaging
}

func (c Contact) IsExternalLink() bool {
	_, ok := c.Reach.(ExternalLink)
	return ok
}

// ExternalURL returns the website, or "" for dialable contacts.
func (c Contact) ExternalURL() string {
	if l, ok := c.Reach.(ExternalLink); ok {
		return l.URL
	}
	return ""
}

type contactJSON struct {
	Emoji          string `json:"emoji"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	HasMessaging   bool   `json:"hasMessaging"`
	IsExternalLink bool   `json:"isExternalLink"`
	ExternalURL    string `json:"externalUrl,omitempty"`
	IsUrgent       bool   `json:"isUrgent"`
}

func (c Contact) MarshalJSON() ([]byte, error) {
	return json.Marshal(contactJSON{
		Emoji:          c.Emoji,
		Name:           c.Name,
		Phone:          c.Phone(),
		HasMessaging:   c.HasMessaging(),
		IsExternalLink: c.IsExternalLink(),
		ExternalURL:    c.ExternalURL(),
		IsUrgent:       c.Urgent,
	})
}
