package benchmark

import (
	"github.com/gin-gonic/gin"

	"compass_backend/platform/httpkit"
)

// Handler handles benchmark HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new benchmark handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// HandleReport returns the peer benchmark for an optional company-size and
// country filter.
// GET /api/v1/benchmark?companySize=...&country=...
func (h *Handler) HandleReport(c *gin.Context) {
	f := Filter{
		CompanySize: c.Query("companySize"),
		Country:     c.Query("country"),
	}

	report, err := h.service.Report(c.Request.Context(), f)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, report)
}
