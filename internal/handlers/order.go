package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/events"
	"github.com/akozharin/music-store/internal/models"
	"github.com/akozharin/music-store/internal/transport"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrInstrumentNotFound = errors.New("instrument not found")
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

// OrderView is an order joined in application code with the names it is
// displayed with.
type OrderView struct {
	models.Order
	ClientName     string `json:"client_name"`
	InstrumentName string `json:"instrument_name"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return validationResponse(c, err)
	}
	if err := req.Validate(); err != nil {
		return validationResponse(c, err)
	}

	order, err := h.create(c.Request().Context(), *req.ClientID, *req.InstrumentID, *req.Quantity)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrInstrumentNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publishCreated(c, order)

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	views, err := h.orderViews(c.Request().Context())
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *OrderHandler) OrdersHTML(c echo.Context) error {
	views, err := h.orderViews(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "orders/list.html", map[string]any{"Orders": views})
}

func (h *OrderHandler) CreateForm(c echo.Context) error {
	ctx := c.Request().Context()
	var clients []models.Client
	if err := h.DB.WithContext(ctx).Find(&clients).Error; err != nil {
		return err
	}
	var instruments []models.Instrument
	if err := h.DB.WithContext(ctx).Find(&instruments).Error; err != nil {
		return err
	}
	return c.Render(http.StatusOK, "orders/create.html", map[string]any{
		"Clients":     clients,
		"Instruments": instruments,
	})
}

func (h *OrderHandler) CreateFromForm(c echo.Context) error {
	req := transport.CreateOrderRequest{}
	if clientID, err := strconv.Atoi(c.FormValue("client_id")); err == nil {
		req.ClientID = &clientID
	}
	if instrumentID, err := strconv.Atoi(c.FormValue("instrument_id")); err == nil {
		req.InstrumentID = &instrumentID
	}
	if quantity, err := strconv.ParseUint(c.FormValue("quantity"), 10, 32); err == nil {
		q := uint(quantity)
		req.Quantity = &q
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	order, err := h.create(c.Request().Context(), *req.ClientID, *req.InstrumentID, *req.Quantity)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrInstrumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	h.publishCreated(c, order)

	return c.Redirect(http.StatusSeeOther, "/orders/html")
}

// create inserts the order and applies the stock decrement in one
// transaction. The total is fixed from the instrument price at this
// moment. Quantity is not checked against stock: ordering more than is
// available floors stock at zero.
func (h *OrderHandler) create(ctx context.Context, clientID, instrumentID int, quantity uint) (*models.Order, error) {
	var order models.Order
	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		var instrument models.Instrument
		if err := tx.First(&instrument, instrumentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstrumentNotFound
			}
			return err
		}

		order = models.Order{
			ClientID:     clientID,
			InstrumentID: instrumentID,
			Quantity:     quantity,
			Total:        instrument.Price * float64(quantity),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		remaining := uint(0)
		if quantity < instrument.Stock {
			remaining = instrument.Stock - quantity
		}
		return tx.Model(&instrument).Update("stock", remaining).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (h *OrderHandler) orderViews(ctx context.Context) ([]OrderView, error) {
	var orders []models.Order
	if err := h.DB.WithContext(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}

	var clients []models.Client
	if err := h.DB.WithContext(ctx).Find(&clients).Error; err != nil {
		return nil, err
	}
	clientsByID := make(map[int]models.Client, len(clients))
	for _, client := range clients {
		clientsByID[client.ID] = client
	}

	var instruments []models.Instrument
	if err := h.DB.WithContext(ctx).Find(&instruments).Error; err != nil {
		return nil, err
	}
	instrumentsByID := make(map[int]models.Instrument, len(instruments))
	for _, instrument := range instruments {
		instrumentsByID[instrument.ID] = instrument
	}

	views := make([]OrderView, len(orders))
	for i, order := range orders {
		views[i] = OrderView{
			Order:          order,
			ClientName:     clientsByID[order.ClientID].Name,
			InstrumentName: instrumentsByID[order.InstrumentID].Name,
		}
	}
	return views, nil
}

func (h *OrderHandler) publishCreated(c echo.Context, order *models.Order) {
	publish(c, h.Producer, events.TopicOrders, strconv.Itoa(order.ID), map[string]any{
		"type":         "order_created",
		"orderID":      order.ID,
		"clientID":     order.ClientID,
		"instrumentID": order.InstrumentID,
		"quantity":     order.Quantity,
		"total":        order.Total,
	})
}
