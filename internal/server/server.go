package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"cardeals/internal/database"
	"cardeals/internal/report"
)

type CarSource interface {
	GetAllCars() ([]database.Car, error)
}

// Server exposes the stored listings as one JSON document and serves the
// static viewer page for every other path.
type Server struct {
	store     CarSource
	indexPath string
	log       logrus.FieldLogger
	now       func() time.Time
}

func New(store CarSource, indexPath string, log logrus.FieldLogger) *Server {
	return &Server{
		store:     store,
		indexPath: indexPath,
		log:       log.WithField("component", "server"),
		now:       time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/cars.json", s.handleCars)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

func (s *Server) handleCars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cars, err := s.store.GetAllCars()
	if err != nil {
		s.log.WithError(err).Error("Loading cars failed")
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := report.FromCars(cars, s.now()).Write(w); err != nil {
		s.log.WithError(err).Warn("Writing response failed")
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	content, err := os.ReadFile(s.indexPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(content)
}

// ListenAndServe runs until ctx is done and then drains open requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Serving on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
