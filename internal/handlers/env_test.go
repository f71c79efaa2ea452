package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/handlers"
	"github.com/akozharin/music-store/internal/models"
	"github.com/akozharin/music-store/internal/render"
	httpserver "github.com/akozharin/music-store/internal/transport/http"
	"github.com/akozharin/music-store/internal/upload"
)

type testEnv struct {
	T           *testing.T
	E           *echo.Echo
	DB          *gorm.DB
	Clients     *handlers.ClientHandler
	Instruments *handlers.InstrumentHandler
	Orders      *handlers.OrderHandler
	Dashboard   *handlers.DashboardHandler
	Export      *handlers.ExportHandler
	StaticDir   string
}

func initTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	if err := db.AutoMigrate(&models.Client{}, &models.Instrument{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)

	staticDir := t.TempDir()
	clientsDir := filepath.Join(staticDir, "images", "clients")
	instrumentsDir := filepath.Join(staticDir, "images", "instruments")
	require.NoError(t, os.MkdirAll(clientsDir, 0o755))
	require.NoError(t, os.MkdirAll(instrumentsDir, 0o755))

	uploads := &upload.Saver{StaticDir: staticDir, Mount: "/static"}

	e := echo.New()
	renderer, err := render.New("../../templates")
	require.NoError(t, err)
	e.Renderer = renderer
	e.HTTPErrorHandler = httpserver.ErrorHandler()

	env := &testEnv{
		T:         t,
		E:         e,
		DB:        db,
		StaticDir: staticDir,
	}

	env.Clients = &handlers.ClientHandler{DB: db, Uploads: uploads, ImagesDir: clientsDir}
	env.Instruments = &handlers.InstrumentHandler{DB: db, Uploads: uploads, ImagesDir: instrumentsDir}
	env.Orders = &handlers.OrderHandler{DB: db}
	env.Dashboard = &handlers.DashboardHandler{DB: db}
	env.Export = &handlers.ExportHandler{DB: db}

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doFormRequest(method, path string, fields map[string]string, fileField, fileName string, fileContent []byte) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(env.T, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(env.T, err)
		_, err = fw.Write(fileContent)
		require.NoError(env.T, err)
	}
	require.NoError(env.T, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}

func (env *testEnv) createInstrument(name, brand string, price float64, stock uint) models.Instrument {
	instrument := models.Instrument{Name: name, Brand: brand, Price: price, Stock: stock}
	require.NoError(env.T, env.DB.Create(&instrument).Error)
	return instrument
}

func (env *testEnv) createClient(name, email, phone string) models.Client {
	client := models.Client{Name: name, Email: email, Phone: phone}
	require.NoError(env.T, env.DB.Create(&client).Error)
	return client
}
