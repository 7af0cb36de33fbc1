package api

import (
	"net/http"

	"ayudame-ya/internal/logging"
	"ayudame-ya/internal/metrics"
	"ayudame-ya/internal/web"
	"ayudame-ya/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps is what the HTTP surface is built from.
type RouterDeps struct {
	Registry    *Registry
	Hub         *ws.Hub
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	RateLimiter *RateLimiter
	Logger      *zap.Logger
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.Gin(deps.Logger))
	r.SetHTMLTemplate(tmpl)

	pageHandler := NewPageHandler()
	zoneHandler := NewZoneHandler()
	sessionHandler := NewSessionHandler(deps.Registry, deps.Metrics, deps.Logger)

	r.GET("/", pageHandler.Index)
	r.GET("/zones/:zone/cards", pageHandler.Cards)
	r.StaticFS("/static", http.FS(web.Static()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": deps.Registry.Len()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	r.GET("/ws/:id", func(c *gin.Context) {
		id := c.Param("id")
		if _, err := deps.Registry.get(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		deps.Hub.ServeWs(c.Writer, c.Request, id)
	})

	// Unthrottled: session start, contact actions and the emergency overlay.
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/sessions", sessionHandler.StartSession)

		sessionGroup := apiGroup.Group("/sessions/:id")
		{
			sessionGroup.POST("/contacts/:index/:action", sessionHandler.ContactAction())
			sessionGroup.POST("/emergency/open", sessionHandler.OpenEmergency())
			sessionGroup.POST("/emergency/close", sessionHandler.CloseEmergency())
		}
	}

	throttled := r.Group("/api")
	if deps.RateLimiter != nil {
		throttled.Use(deps.RateLimiter.Middleware())
	}
	{
		// Catalog Routes
		throttled.GET("/zones", zoneHandler.GetZones)
		throttled.GET("/zones/:zone/contacts", zoneHandler.GetContacts)
		throttled.GET("/zones/:zone/urgent", zoneHandler.GetUrgentContacts)

		// Session Routes
		sessionGroup := throttled.Group("/sessions/:id")
		{
			sessionGroup.GET("", sessionHandler.GetState())
			sessionGroup.DELETE("", sessionHandler.EndSession)
			sessionGroup.PUT("/zone", sessionHandler.SelectZone())
			sessionGroup.POST("/welcome/dismiss", sessionHandler.DismissWelcome())
			sessionGroup.POST("/welcome/hide", sessionHandler.HideWelcome())
			sessionGroup.POST("/rating/close", sessionHandler.CloseRating())

			sessionGroup.POST("/share", sessionHandler.ShareApp())
			sessionGroup.POST("/share/failure", sessionHandler.ShareFailure())
			sessionGroup.POST("/share/messaging", sessionHandler.ShareViaMessaging())
			sessionGroup.POST("/share/qr", sessionHandler.ShowQRCode())

			sessionGroup.POST("/sponsor/mail", sessionHandler.RequestSponsorship())
			sessionGroup.POST("/sponsor/open", sessionHandler.OpenSponsorForm())
			sessionGroup.POST("/sponsor/close", sessionHandler.CloseSponsorForm())
			sessionGroup.PUT("/sponsor/draft", sessionHandler.UpdateSponsorDraft())
			sessionGroup.POST("/sponsor/submit", sessionHandler.SubmitSponsorForm())
		}
	}

	return r, nil
}
