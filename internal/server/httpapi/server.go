// Package httpapi exposes the atomic backend procedures over HTTP. Every
// endpoint is one procedure call; the API offers no multi-call transactions.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/server/models"
)

// SpotProcedures is the slice of SpotService the API needs.
type SpotProcedures interface {
	Merge(ctx context.Context, spot *models.Spot) (string, error)
	Delete(ctx context.Context, id string) error
	ClearRating(ctx context.Context, id string) error
}

// PhotoProcedures is the slice of PhotoService the API needs.
type PhotoProcedures interface {
	Add(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	Delete(ctx context.Context, id string) (string, error)
}

// Server serves the spotlist HTTP API on one address.
type Server struct {
	addr string
	echo *echo.Echo
	log  logging.Logger
}

type structValidator struct {
	validate *validator.Validate
}

func (v *structValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func NewServer(addr string, spots SpotProcedures, photos PhotoProcedures, log logging.Logger) *Server {
	return &Server{
		addr: addr,
		echo: newRouter(spots, photos, log),
		log:  log.With("module", "httpapi"),
	}
}

func newRouter(spots SpotProcedures, photos PhotoProcedures, log logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &structValidator{validate: validator.New()}
	e.Use(middleware.Recover())

	h := &handlers{spots: spots, photos: photos, log: log.With("module", "handlers")}

	e.GET("/healthz", h.health)

	v1 := e.Group("/api/v1")
	v1.POST("/spots/merge", h.mergeSpot)
	v1.DELETE("/spots/:id", h.deleteSpot)
	v1.DELETE("/spots/:id/rating", h.deleteRating)
	v1.POST("/photos", h.addPhoto)
	v1.DELETE("/photos/:id", h.deletePhoto)

	return e
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info(ctx, "starting http server", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
