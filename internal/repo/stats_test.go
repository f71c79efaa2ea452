package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/models"
	"github.com/akozharin/music-store/internal/repo"
)

func statsDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Client{}, &models.Instrument{}, &models.Order{}))

	client := models.Client{Name: "c", Email: "c@example.com", Phone: "1"}
	require.NoError(t, db.Create(&client).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, instrumentID int, total float64, day time.Time) {
	t.Helper()
	order := models.Order{
		ClientID:     1,
		InstrumentID: instrumentID,
		Quantity:     1,
		Total:        total,
		CreatedAt:    day,
	}
	require.NoError(t, db.Create(&order).Error)
}

func TestSalesByInstrument(t *testing.T) {
	db := statsDB(t)

	guitar := models.Instrument{Name: "Guitar", Brand: "Fender", Price: 500, Stock: 10}
	require.NoError(t, db.Create(&guitar).Error)
	unsold := models.Instrument{Name: "Unsold", Brand: "Nobody", Price: 100, Stock: 1}
	require.NoError(t, db.Create(&unsold).Error)

	day := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seedOrder(t, db, guitar.ID, 500, day)
	seedOrder(t, db, guitar.ID, 1000, day.Add(24*time.Hour))

	rows, err := repo.SalesByInstrument(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Guitar", rows[0].Name)
	require.Equal(t, 1500.0, rows[0].Sales)
}

func TestSalesByDayAscendingAndDistinct(t *testing.T) {
	db := statsDB(t)

	guitar := models.Instrument{Name: "Guitar", Brand: "Fender", Price: 500, Stock: 10}
	require.NoError(t, db.Create(&guitar).Error)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seedOrder(t, db, guitar.ID, 100, base)
	seedOrder(t, db, guitar.ID, 200, base)
	seedOrder(t, db, guitar.ID, 300, base.Add(48*time.Hour))
	seedOrder(t, db, guitar.ID, 400, base.Add(24*time.Hour))

	rows, err := repo.SalesByDay(context.Background(), db, 30)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "2026-05-01", rows[0].Day)
	require.Equal(t, 300.0, rows[0].Sales)
	require.Equal(t, "2026-05-02", rows[1].Day)
	require.Equal(t, 400.0, rows[1].Sales)
	require.Equal(t, "2026-05-03", rows[2].Day)
	require.Equal(t, 300.0, rows[2].Sales)
}

func TestSalesByDayLimitKeepsMostRecent(t *testing.T) {
	db := statsDB(t)

	guitar := models.Instrument{Name: "Guitar", Brand: "Fender", Price: 500, Stock: 10}
	require.NoError(t, db.Create(&guitar).Error)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		seedOrder(t, db, guitar.ID, 10, base.Add(time.Duration(i)*24*time.Hour))
	}

	rows, err := repo.SalesByDay(context.Background(), db, 30)
	require.NoError(t, err)
	require.Len(t, rows, 30)
	// the 10 oldest days fall off, the newest stays last
	require.Equal(t, "2026-01-11", rows[0].Day)
	require.Equal(t, "2026-02-09", rows[29].Day)
}

func TestSalesByDayEmpty(t *testing.T) {
	db := statsDB(t)

	rows, err := repo.SalesByDay(context.Background(), db, 30)
	require.NoError(t, err)
	require.Empty(t, rows)
}
