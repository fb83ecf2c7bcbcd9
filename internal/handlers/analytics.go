package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/agency-hub/internal/database"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// report adapts one analytics query to a handler honoring the startDate/endDate filter.
func report[T any](build func(policy.Principal, database.DateRange) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		dr, ok := dateRange(c)
		if !ok {
			return
		}
		out, err := build(p, dr)
		if err != nil {
			if respondCommonError(c, err) {
				return
			}
			respondUnexpected(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h *AnalyticsHandler) Overview() gin.HandlerFunc { return report(h.analyticsService.Overview) }
func (h *AnalyticsHandler) Revenue() gin.HandlerFunc  { return report(h.analyticsService.Revenue) }
func (h *AnalyticsHandler) Projects() gin.HandlerFunc { return report(h.analyticsService.Projects) }
func (h *AnalyticsHandler) Tasks() gin.HandlerFunc    { return report(h.analyticsService.Tasks) }
func (h *AnalyticsHandler) Clients() gin.HandlerFunc  { return report(h.analyticsService.Clients) }
func (h *AnalyticsHandler) Team() gin.HandlerFunc     { return report(h.analyticsService.Team) }
