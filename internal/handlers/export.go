package handlers

import (
	"bufio"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/models"
)

type ExportHandler struct {
	DB *gorm.DB
}

// ExportClients serves all clients as a plain-text download. The listing
// is written to a per-request temp file that is removed after the
// response, so concurrent exports never share a destination.
func (h *ExportHandler) ExportClients(c echo.Context) error {
	var clients []models.Client
	if err := h.DB.WithContext(c.Request().Context()).Find(&clients).Error; err != nil {
		return err
	}

	path, err := writeListing("clients-*.txt", func(w *bufio.Writer) error {
		if _, err := fmt.Fprint(w, "=== CLIENT LIST ===\n\n"); err != nil {
			return err
		}
		for _, client := range clients {
			_, err := fmt.Fprintf(w, "ID: %d\nName: %s\nEmail: %s\nPhone: %s\nImage: %s\n\n",
				client.ID, client.Name, client.Email, client.Phone, orNA(client.Image))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer os.Remove(path)

	return c.Attachment(path, "clients.txt")
}

func (h *ExportHandler) ExportInstruments(c echo.Context) error {
	var instruments []models.Instrument
	if err := h.DB.WithContext(c.Request().Context()).Find(&instruments).Error; err != nil {
		return err
	}

	path, err := writeListing("instruments-*.txt", func(w *bufio.Writer) error {
		if _, err := fmt.Fprint(w, "=== INSTRUMENT LIST ===\n\n"); err != nil {
			return err
		}
		for _, instrument := range instruments {
			_, err := fmt.Fprintf(w, "ID: %d\nName: %s\nBrand: %s\nPrice: %g\nStock: %d\nImage: %s\n\n",
				instrument.ID, instrument.Name, instrument.Brand, instrument.Price, instrument.Stock, orNA(instrument.Image))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer os.Remove(path)

	return c.Attachment(path, "instruments.txt")
}

func writeListing(pattern string, fill func(w *bufio.Writer) error) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("export: create temp file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("export: write listing: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("export: flush listing: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("export: close listing: %w", err)
	}
	return f.Name(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
