package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/events"
	"github.com/akozharin/music-store/internal/logging"
	"github.com/akozharin/music-store/internal/models"
	"github.com/akozharin/music-store/internal/service/search"
	"github.com/akozharin/music-store/internal/transport"
	"github.com/akozharin/music-store/internal/upload"
)

type InstrumentHandler struct {
	DB        *gorm.DB
	Producer  *events.Producer
	Uploads   *upload.Saver
	ImagesDir string
	ES        *elasticsearch.Client
	Index     string
}

func (h *InstrumentHandler) GetInstruments(c echo.Context) error {
	var instruments []models.Instrument
	if err := h.DB.WithContext(c.Request().Context()).Find(&instruments).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, instruments)
}

func (h *InstrumentHandler) CreateInstrument(c echo.Context) error {
	var req transport.CreateInstrumentRequest
	if err := c.Bind(&req); err != nil {
		return validationResponse(c, err)
	}
	if err := req.Validate(); err != nil {
		return validationResponse(c, err)
	}

	instrument := models.Instrument{
		Name:  req.Name,
		Brand: req.Brand,
		Price: *req.Price,
		Stock: *req.Stock,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&instrument).Error; err != nil {
		return createErrorResponse(c, err)
	}

	h.afterWrite(c, "instrument_created", &instrument)

	return c.JSON(http.StatusCreated, instrument)
}

func (h *InstrumentHandler) InstrumentsHTML(c echo.Context) error {
	var instruments []models.Instrument
	if err := h.DB.WithContext(c.Request().Context()).Find(&instruments).Error; err != nil {
		return err
	}
	return c.Render(http.StatusOK, "instruments/list.html", map[string]any{"Instruments": instruments})
}

func (h *InstrumentHandler) CreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "instruments/create.html", nil)
}

func (h *InstrumentHandler) CreateFromForm(c echo.Context) error {
	req := transport.CreateInstrumentRequest{
		Name:  c.FormValue("name"),
		Brand: c.FormValue("brand"),
	}
	if price, err := strconv.ParseFloat(c.FormValue("price"), 64); err == nil {
		req.Price = &price
	}
	if stock, err := strconv.ParseUint(c.FormValue("stock"), 10, 32); err == nil {
		s := uint(stock)
		req.Stock = &s
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	file, _ := c.FormFile("image")
	imageURL, err := h.Uploads.Save(file, h.ImagesDir)
	if err != nil {
		return fmt.Errorf("save instrument image: %w", err)
	}

	instrument := models.Instrument{
		Name:  req.Name,
		Brand: req.Brand,
		Price: *req.Price,
		Stock: *req.Stock,
		Image: imageURL,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&instrument).Error; err != nil {
		if rmErr := h.Uploads.Remove(imageURL); rmErr != nil {
			logging.FromContext(c.Request().Context()).Warn("orphan image cleanup failed", "url", imageURL, "error", rmErr)
		}
		return err
	}

	h.afterWrite(c, "instrument_created", &instrument)

	return c.Redirect(http.StatusSeeOther, "/instruments/html")
}

func (h *InstrumentHandler) DetailHTML(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid instrument id")
	}
	var instrument models.Instrument
	if err := h.DB.WithContext(c.Request().Context()).First(&instrument, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "instrument not found")
		}
		return err
	}
	return c.Render(http.StatusOK, "instruments/detail.html", map[string]any{"Instrument": instrument})
}

func (h *InstrumentHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid instrument id")
	}
	ctx := c.Request().Context()

	var instrument models.Instrument
	if err := h.DB.WithContext(ctx).First(&instrument, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "instrument not found")
		}
		return err
	}

	if err := h.DB.WithContext(ctx).Delete(&instrument).Error; err != nil {
		return err
	}

	if instrument.Image != "" {
		if err := h.Uploads.Remove(instrument.Image); err != nil {
			logging.FromContext(ctx).Warn("instrument image removal failed", "url", instrument.Image, "error", err)
		}
	}

	if h.ES != nil {
		if err := search.DeleteInstrument(ctx, h.ES, h.Index, instrument.ID); err != nil {
			logging.FromContext(ctx).Warn("search index delete failed", "instrumentID", instrument.ID, "error", err)
		}
	}

	publish(c, h.Producer, events.TopicInstruments, strconv.Itoa(instrument.ID), map[string]any{
		"type":         "instrument_deleted",
		"instrumentID": instrument.ID,
	})

	return c.Redirect(http.StatusSeeOther, "/instruments/html")
}

// afterWrite runs the side effects of a successful insert: event publish
// and search index upsert, both best-effort.
func (h *InstrumentHandler) afterWrite(c echo.Context, eventType string, instrument *models.Instrument) {
	publish(c, h.Producer, events.TopicInstruments, strconv.Itoa(instrument.ID), map[string]any{
		"type":         eventType,
		"instrumentID": instrument.ID,
		"name":         instrument.Name,
	})
	if h.ES != nil {
		if err := search.IndexInstrument(c.Request().Context(), h.ES, h.Index, instrument); err != nil {
			logging.FromContext(c.Request().Context()).Warn("search index failed", "instrumentID", instrument.ID, "error", err)
		}
	}
}
