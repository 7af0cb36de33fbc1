package api

import (
	"net/http"

	"ayudame-ya/internal/catalog"
	"ayudame-ya/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	visitorCookie    = "ayudame_visitor"
	visitorCookieAge = 400 * 24 * 60 * 60
)

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index renders the page. ?zone= preselects a zone; unknown values fall
// back to the default.
func (h *PageHandler) Index(c *gin.Context) {
	visitorID(c)
	z, err := catalog.ParseZone(c.Query("zone"))
	if err != nil {
		z = catalog.DefaultZone
	}
	c.HTML(http.StatusOK, "index.html", web.NewPage(z, requestURL(c.Request)))
}

// Cards renders the contact cards of :zone, or its urgent ones with
// ?list=urgent, for the page to swap in on zone change.
func (h *PageHandler) Cards(c *gin.Context) {
	z, ok := zoneParam(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "cards", web.Cards(z, c.Query("list")))
}

// visitorID returns the visitor cookie, issuing one on first contact.
func visitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookie, id, visitorCookieAge, "/", "", c.Request.TLS != nil, true)
	c.Request.AddCookie(&http.Cookie{Name: visitorCookie, Value: id})
	return id
}

func pageURL(r *http.Request) string {
	return origin(r) + "/"
}

// requestURL is the address the browser shows for r.
func requestURL(r *http.Request) string {
	return origin(r) + r.URL.RequestURI()
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
