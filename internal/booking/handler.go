package booking

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openmeet/backend/pkg/response"
)

// Handler serves the public booking page.
type Handler struct {
	resolver *Resolver
	logger   *zap.Logger
}

// NewHandler creates a booking-page handler.
func NewHandler(resolver *Resolver, logger *zap.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger}
}

// GetUserPage handles GET /:user. The path parameter may name one user or a
// dynamic group ("alice+bob").
func (h *Handler) GetUserPage(c *gin.Context) {
	req := Request{
		UsernameParam: c.Param("user"),
		Host:          c.Request.Host,
		OrgSlugParam:  c.Query("orgSlug"),
		Query:         c.Request.URL.Query(),
	}
	outcome, err := h.resolver.Resolve(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("resolve booking page", zap.String("user", req.UsernameParam), zap.Error(err))
		response.Internal(c, "failed to load page")
		return
	}

	if c.Query("log") == "1" {
		c.Header("X-Data-Fetch-Time", fmt.Sprintf("%dms", outcome.FetchTime.Milliseconds()))
	}

	switch outcome.Kind {
	case OutcomeRedirect:
		status := http.StatusTemporaryRedirect
		if outcome.Redirect.Permanent {
			status = http.StatusPermanentRedirect
		}
		c.Redirect(status, outcome.Redirect.Destination)
	case OutcomeNotFound:
		response.NotFound(c, "page not found")
	default:
		response.OK(c, outcome.Page)
	}
}
