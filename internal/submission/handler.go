package submission

import (
	"io"
	"net/http"

	"compass_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// maxPayloadBytes caps the size of an inbound webhook body.
const maxPayloadBytes = 1 << 20

// Handler handles submission HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new submission handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleIngest processes an inbound assessment-submission webhook.
// POST /api/v1/webhook/submissions?assessmentId=...
// The body is the raw vendor payload and is passed through untouched.
func (h *Handler) HandleIngest(c *gin.Context) {
	assessmentID := c.Query("assessmentId")
	if assessmentID == "" {
		assessmentID = c.GetHeader("X-Assessment-ID")
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unreadable request body", nil)
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), raw, assessmentID)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, result)
}

// HandleGetResult serves a scored submission by its public result key.
// GET /api/v1/submissions/:resultKey
func (h *Handler) HandleGetResult(c *gin.Context) {
	resp, err := h.service.GetResult(c.Request.Context(), c.Param("resultKey"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
