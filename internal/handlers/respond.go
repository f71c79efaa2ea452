package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/events"
	"github.com/akozharin/music-store/internal/logging"
	"github.com/akozharin/music-store/internal/transport"
)

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, Response{
		Status:  "error",
		Message: err.Error(),
	})
}

func validationResponse(c echo.Context, err error) error {
	resp := Response{Status: "error", Message: "validation failed"}
	var fields transport.FieldErrors
	if errors.As(err, &fields) {
		resp.Fields = fields
	}
	return c.JSON(http.StatusUnprocessableEntity, resp)
}

// createErrorResponse maps persistence failures of a create: duplicate
// keys become 409, everything else 500.
func createErrorResponse(c echo.Context, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errorResponse(c, http.StatusConflict, err)
	}
	return errorResponse(c, http.StatusInternalServerError, err)
}

func publish(c echo.Context, p *events.Producer, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish error", "topic", topic, "error", err)
	}
}
