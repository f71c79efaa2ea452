package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/events"
	"github.com/akozharin/music-store/internal/logging"
	"github.com/akozharin/music-store/internal/models"
	"github.com/akozharin/music-store/internal/transport"
	"github.com/akozharin/music-store/internal/upload"
)

type ClientHandler struct {
	DB        *gorm.DB
	Producer  *events.Producer
	Uploads   *upload.Saver
	ImagesDir string
}

func (h *ClientHandler) GetClients(c echo.Context) error {
	var clients []models.Client
	if err := h.DB.WithContext(c.Request().Context()).Find(&clients).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req transport.CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return validationResponse(c, err)
	}
	if err := req.Validate(); err != nil {
		return validationResponse(c, err)
	}

	client := models.Client{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&client).Error; err != nil {
		return createErrorResponse(c, err)
	}

	publish(c, h.Producer, events.TopicClients, strconv.Itoa(client.ID), map[string]any{
		"type":     "client_created",
		"clientID": client.ID,
		"name":     client.Name,
	})

	return c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) ClientsHTML(c echo.Context) error {
	var clients []models.Client
	if err := h.DB.WithContext(c.Request().Context()).Find(&clients).Error; err != nil {
		return err
	}
	return c.Render(http.StatusOK, "clients/list.html", map[string]any{"Clients": clients})
}

func (h *ClientHandler) CreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "clients/create.html", nil)
}

func (h *ClientHandler) CreateFromForm(c echo.Context) error {
	req := transport.CreateClientRequest{
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Phone: c.FormValue("phone"),
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	file, _ := c.FormFile("image")
	imageURL, err := h.Uploads.Save(file, h.ImagesDir)
	if err != nil {
		return fmt.Errorf("save client image: %w", err)
	}

	client := models.Client{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Image: imageURL,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&client).Error; err != nil {
		// keep upload and insert atomic from the caller's view
		if rmErr := h.Uploads.Remove(imageURL); rmErr != nil {
			logging.FromContext(c.Request().Context()).Warn("orphan image cleanup failed", "url", imageURL, "error", rmErr)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "client already exists")
		}
		return err
	}

	publish(c, h.Producer, events.TopicClients, strconv.Itoa(client.ID), map[string]any{
		"type":     "client_created",
		"clientID": client.ID,
		"name":     client.Name,
	})

	return c.Redirect(http.StatusSeeOther, "/clients/html")
}

func (h *ClientHandler) DetailHTML(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}
	var client models.Client
	if err := h.DB.WithContext(c.Request().Context()).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "client not found")
		}
		return err
	}
	return c.Render(http.StatusOK, "clients/detail.html", map[string]any{"Client": client})
}

func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}
	ctx := c.Request().Context()

	var client models.Client
	if err := h.DB.WithContext(ctx).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "client not found")
		}
		return err
	}

	if err := h.DB.WithContext(ctx).Delete(&client).Error; err != nil {
		return err
	}

	if client.Image != "" {
		if err := h.Uploads.Remove(client.Image); err != nil {
			logging.FromContext(ctx).Warn("client image removal failed", "url", client.Image, "error", err)
		}
	}

	publish(c, h.Producer, events.TopicClients, strconv.Itoa(client.ID), map[string]any{
		"type":     "client_deleted",
		"clientID": client.ID,
	})

	return c.Redirect(http.StatusSeeOther, "/clients/html")
}
