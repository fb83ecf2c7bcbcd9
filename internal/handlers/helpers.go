package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/agency-hub/internal/database"
	"github.com/yukikurage/agency-hub/internal/dto"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/middleware"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/services"
)

// principal returns the authenticated principal or writes a 401.
func principal(c *gin.Context) (policy.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return p, ok
}

// pathID parses the named path parameter or writes a 400.
func pathID(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// dateRange reads the optional startDate and endDate query parameters.
func dateRange(c *gin.Context) (database.DateRange, bool) {
	var r database.DateRange
	if v := c.Query("startDate"); v != "" {
		t, err := dto.ParseDate(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid startDate")
			return r, false
		}
		r.Start = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := dto.ParseDate(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid endDate")
			return r, false
		}
		r.End = &t
	}
	return r, true
}

// respondCommonError handles errors shared by every resource; it reports whether it wrote a response.
func respondCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, services.ErrNoAgency):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "")
	default:
		return false
	}
	return true
}

// respondUnexpected surfaces the raw error with a 500.
func respondUnexpected(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
	apierrors.InternalError(c, err.Error())
}
