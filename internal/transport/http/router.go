package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akozharin/music-store/internal/handlers"
)

type Deps struct {
	DB                *gorm.DB
	ClientHandler     *handlers.ClientHandler
	InstrumentHandler *handlers.InstrumentHandler
	OrderHandler      *handlers.OrderHandler
	DashboardHandler  *handlers.DashboardHandler
	ExportHandler     *handlers.ExportHandler
	SearchHandler     *handlers.SearchHandler
	StaticDir         string
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Static("/static", d.StaticDir)

	e.GET("/", func(c echo.Context) error { return c.Render(http.StatusOK, "index.html", nil) })
	e.GET("/documentation", func(c echo.Context) error { return c.Render(http.StatusOK, "documentation.html", nil) })

	clients := e.Group("/clients")
	clients.GET("", d.ClientHandler.GetClients)
	clients.POST("", d.ClientHandler.CreateClient)
	clients.GET("/html", d.ClientHandler.ClientsHTML)
	clients.GET("/create", d.ClientHandler.CreateForm)
	clients.POST("/create", d.ClientHandler.CreateFromForm)
	clients.GET("/:id", d.ClientHandler.DetailHTML)
	clients.POST("/delete/:id", d.ClientHandler.Delete)

	instruments := e.Group("/instruments")
	instruments.GET("", d.InstrumentHandler.GetInstruments)
	instruments.POST("", d.InstrumentHandler.CreateInstrument)
	instruments.GET("/html", d.InstrumentHandler.InstrumentsHTML)
	instruments.GET("/create", d.InstrumentHandler.CreateForm)
	instruments.POST("/create", d.InstrumentHandler.CreateFromForm)
	instruments.GET("/search", d.SearchHandler.Search)
	instruments.GET("/:id", d.InstrumentHandler.DetailHTML)
	instruments.POST("/delete/:id", d.InstrumentHandler.Delete)

	orders := e.Group("/orders")
	orders.GET("", d.OrderHandler.GetOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/html", d.OrderHandler.OrdersHTML)
	orders.GET("/create", d.OrderHandler.CreateForm)
	orders.POST("/create", d.OrderHandler.CreateFromForm)

	e.GET("/dashboard", d.DashboardHandler.Dashboard)

	e.GET("/export/clients", d.ExportHandler.ExportClients)
	e.GET("/export/instruments", d.ExportHandler.ExportInstruments)
}

// ErrorHandler renders an error page for browser requests and a JSON
// error body for everything else.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}

		if strings.Contains(c.Request().Header.Get("Accept"), "text/html") {
			if rerr := c.Render(code, "error.html", map[string]any{"Code": code, "Message": msg}); rerr == nil {
				return
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]any{"status": "error", "message": msg})
	}
}
