package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/models"
)

type InstrumentSales struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

type DailySales struct {
	Day   string  `json:"day"`
	Sales float64 `json:"sales"`
}

// SalesByInstrument sums order totals per instrument. Instruments without
// orders do not appear (inner join).
func SalesByInstrument(ctx context.Context, db *gorm.DB) ([]InstrumentSales, error) {
	var rows []InstrumentSales
	err := db.WithContext(ctx).
		Model(&models.Order{}).
		Select("instruments.name AS name, SUM(orders.total) AS sales").
		Joins("JOIN instruments ON instruments.id = orders.instrument_id").
		Group("instruments.id, instruments.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesByDay sums order totals per calendar day of created_at, keeps the
// `limit` most recent distinct days and returns them oldest first for
// charting.
func SalesByDay(ctx context.Context, db *gorm.DB, limit int) ([]DailySales, error) {
	var rows []DailySales
	err := db.WithContext(ctx).
		Model(&models.Order{}).
		Select("CAST(DATE(orders.created_at) AS TEXT) AS day, SUM(orders.total) AS sales").
		Group("DATE(orders.created_at)").
		Order("day DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
