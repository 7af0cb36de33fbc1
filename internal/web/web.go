// Package web embeds the page template and its static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"

	"ayudame-ya/internal/catalog"
	"ayudame-ya/internal/dispatch"
	"ayudame-ya/internal/platform"
	"ayudame-ya/internal/share"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Card is what the "card" template renders: one contact of a list.
type Card struct {
	Index   int
	Contact catalog.Contact
	List    string
}

// DialURL is typed so the template keeps the tel: scheme.
func (c Card) DialURL() template.URL {
	return template.URL(platform.DialURL(c.Contact.Phone()))
}

func (c Card) MessagingURL() string {
	return platform.MessagingURL(dispatch.MessagingDigits(c.Contact.Phone()), "")
}

// CardList is one rendered list of cards, "all" or "urgent".
type CardList struct {
	List     string
	Contacts []catalog.Contact
}

// Cards returns the list of zone z named list.
func Cards(z catalog.Zone, list string) CardList {
	if list == "urgent" {
		return CardList{List: list, Contacts: catalog.UrgentContacts(z)}
	}
	return CardList{List: "all", Contacts: catalog.Contacts(z)}
}

// ZoneOption is one entry of the zone selector.
type ZoneOption struct {
	Code     string
	Label    string
	Selected bool
}

// Page is the data of index.html.
type Page struct {
	Zone     catalog.Zone
	Zones    []ZoneOption
	Contacts CardList
	Urgent   CardList

	ShareTitle        string
	ShareText         string
	MessagingShareURL string
	QRCodeURL         string
	SponsorMailURL    string
}

// NewPage renders the page for zone z, served at pageURL.
func NewPage(z catalog.Zone, pageURL string) Page {
	p := Page{
		Zone:              z,
		Contacts:          Cards(z, "all"),
		Urgent:            Cards(z, "urgent"),
		ShareTitle:        share.ShareTitle,
		ShareText:         share.ShareText,
		MessagingShareURL: platform.MessagingURL("", share.MessagingText(pageURL)),
		QRCodeURL:         share.QRCodeURL(pageURL),
		SponsorMailURL:    platform.MailtoURL(share.SponsorAddress, share.SponsorSubject, share.SponsorBody),
	}
	for _, zone := range catalog.Zones() {
		p.Zones = append(p.Zones, ZoneOption{Code: zone.String(), Label: zone.Label(), Selected: zone == z})
	}
	return p
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"card": func(i int, c catalog.Contact, list string) Card {
			return Card{Index: i, Contact: c, List: list}
		},
	}).ParseFS(assets, "templates/*.html")
}

// Static is the file tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
