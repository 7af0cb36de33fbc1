package api

import (
	"net/http"

	"ayudame-ya/internal/catalog"

	"github.com/gin-gonic/gin"
)

type ZoneHandler struct{}

func NewZoneHandler() *ZoneHandler {
	return &ZoneHandler{}
}

type zoneResponse struct {
	Code  catalog.Zone `json:"code"`
	Label string       `json:"label"`
}

func (h *ZoneHandler) GetZones(c *gin.Context) {
	zones := []zoneResponse{}
	for _, z := range catalog.Zones() {
		zones = append(zones, zoneResponse{Code: z, Label: z.Label()})
	}
	c.JSON(http.StatusOK, zones)
}

func (h *ZoneHandler) GetContacts(c *gin.Context) {
	z, ok := zoneParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, catalog.Contacts(z))
}

func (h *ZoneHandler) GetUrgentContacts(c *gin.Context) {
	z, ok := zoneParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, catalog.UrgentContacts(z))
}

func zoneParam(c *gin.Context) (catalog.Zone, bool) {
	z, err := catalog.ParseZone(c.Param("zone"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return 0, false
	}
	return z, true
}
