package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/service"
)

// CatalogHandler serves announcements, the event calendar and the static
// lists a client needs to render forms and navigation.
type CatalogHandler struct {
	announcements *service.Announcements
	catalog       *catalog.Catalog
	now           func() time.Time
}

func NewCatalogHandler(announcements *service.Announcements, cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{announcements: announcements, catalog: cat, now: time.Now}
}

// Announcements handles GET /v1/announcements?branch=CSE&year=2
//
// Without a branch the response carries the general, recent and past
// sections instead of a single filtered list.
func (h *CatalogHandler) Announcements(c *gin.Context) {
	rawBranch := c.Query("branch")
	if rawBranch == "" {
		c.JSON(http.StatusOK, gin.H{
			"general": h.announcements.General(),
			"recent":  h.announcements.Recent(),
			"past":    h.announcements.Past(),
		})
		return
	}

	branch, err := models.ParseBranch(rawBranch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	year, err := models.ParseYear(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": h.announcements.ForBranch(branch, year)})
}

// Calendar handles GET /v1/calendar?date=2024-03-15. The date defaults to
// today.
func (h *CatalogHandler) Calendar(c *gin.Context) {
	day := h.now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'date' parameter"})
			return
		}
		day = parsed
	}
	c.JSON(http.StatusOK, gin.H{
		"date":   day.Format(time.DateOnly),
		"events": h.announcements.EventsOn(day),
		"colors": h.catalog.CategoryColors,
	})
}

func (h *CatalogHandler) Navigation(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Navigation)
}

func (h *CatalogHandler) Interests(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Interests)
}

func (h *CatalogHandler) Skills(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Skills)
}

func (h *CatalogHandler) PaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.PaymentMethods)
}
