package recommendation

import (
	"net/http"
	"strconv"

	"compass_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles recommendation HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new recommendation handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGetCategory serves category guidance for (code, stage).
// GET /api/v1/recommendations/categories/:code/stages/:stage
func (h *Handler) HandleGetCategory(c *gin.Context) {
	stage, ok := parseStage(c)
	if !ok {
		return
	}

	rec, err := h.service.ResolveCategory(c.Request.Context(), c.Param("code"), stage)
	if httpkit.HandleError(c, err) {
		return
	}
	if rec == nil {
		httpkit.Error(c, http.StatusNotFound, "no recommendation authored", nil)
		return
	}

	httpkit.OK(c, rec)
}

// HandleGetQuestion serves question guidance for (code, stage).
// GET /api/v1/recommendations/questions/:code/stages/:stage
func (h *Handler) HandleGetQuestion(c *gin.Context) {
	stage, ok := parseStage(c)
	if !ok {
		return
	}

	plan, err := h.service.ResolveQuestion(c.Request.Context(), c.Param("code"), stage)
	if httpkit.HandleError(c, err) {
		return
	}
	if plan == nil {
		httpkit.Error(c, http.StatusNotFound, "no plan authored", nil)
		return
	}

	httpkit.OK(c, plan)
}

func parseStage(c *gin.Context) (int, bool) {
	stage, err := strconv.Atoi(c.Param("stage"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "stage must be an integer", nil)
		return 0, false
	}
	return stage, true
}
