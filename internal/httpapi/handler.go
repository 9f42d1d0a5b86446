// Package httpapi is the thin HTTP surface of §6: request decoding,
// invoking the core, and mapping the core's error taxonomy onto status
// codes. It performs no business logic itself, grounded on the teacher's
// own handler package (gin.Context binding, a local ValidationError shape)
// but reworked to call the route generator directly instead of a usecase
// layer.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/generator"
	"github.com/watnow/routeloop/internal/model"
)

// LoopHandler exposes the route generator over JSON.
type LoopHandler struct {
	gen      *generator.Generator
	validate *validator.Validate
	logger   *zap.Logger
}

func NewLoopHandler(gen *generator.Generator, logger *zap.Logger) *LoopHandler {
	return &LoopHandler{gen: gen, validate: validator.New(), logger: logger}
}

// PostLoop handles POST /loops: decode, validate, generate, respond.
func (h *LoopHandler) PostLoop(c *gin.Context) {
	var dto loopRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is malformed", "details": err.Error()})
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
		return
	}
	if err := h.validateCategories(dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
		return
	}

	req, err := dto.toLoopRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates", "details": err.Error()})
		return
	}

	routes, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dtos := make([]routeDTO, len(routes))
	for i, r := range routes {
		dtos[i] = toRouteDTO(r)
	}
	c.JSON(http.StatusOK, gin.H{"routes": dtos})
}

// validateCategories rejects any category string outside the closed §3
// category set before it ever reaches the core, matching the teacher's own
// practice of layering a hand-written check atop struct-tag validation.
func (h *LoopHandler) validateCategories(dto loopRequestDTO) error {
	if dto.Preferences == nil {
		return nil
	}
	for _, c := range dto.Preferences.Categories {
		if !model.IsValidCategory(model.PoiCategory(c)) {
			return &apperr.ValidationError{Field: "preferences.categories", Message: "unknown category: " + c}
		}
	}
	return nil
}

// respondError maps apperr.Kind onto an HTTP status code, per §7: the
// core's own error taxonomy is translated here and nowhere else.
func (h *LoopHandler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindInsufficientPois:
		status = http.StatusUnprocessableEntity
	case apperr.KindDirectionsUnavailable:
		status = http.StatusServiceUnavailable
	case apperr.KindDirectionsTransient, apperr.KindDirectionsFatal:
		status = http.StatusBadGateway
	case apperr.KindCancelled:
		status = http.StatusGatewayTimeout
	case apperr.KindStorage:
		status = http.StatusInternalServerError
	}

	h.logger.Warn("loop generation failed", zap.String("kind", string(kind)), zap.Error(err))

	var re *apperr.RouteError
	if errors.As(err, &re) {
		c.JSON(status, gin.H{"error": re.Message, "kind": re.Kind, "details": re.Details})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
