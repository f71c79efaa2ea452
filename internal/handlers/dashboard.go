package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/repo"
)

const salesByDayLimit = 30

type DashboardHandler struct {
	DB *gorm.DB
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	byInstrument, err := repo.SalesByInstrument(ctx, h.DB)
	if err != nil {
		return err
	}
	byDay, err := repo.SalesByDay(ctx, h.DB, salesByDayLimit)
	if err != nil {
		return err
	}

	instrumentJSON, err := json.Marshal(byInstrument)
	if err != nil {
		return err
	}
	dayJSON, err := json.Marshal(byDay)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "dashboard.html", map[string]any{
		"SalesData":      byInstrument,
		"SalesByDay":     byDay,
		"SalesDataJSON":  template.JS(instrumentJSON),
		"SalesByDayJSON": template.JS(dayJSON),
	})
}
