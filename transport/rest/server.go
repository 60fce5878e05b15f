package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
	"github.com/rocketscienceinc/threetoe-backend/internal/tictactoe"
	"github.com/rocketscienceinc/threetoe-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type gameService interface {
	CreateGame(ctx context.Context, aiLevel string) (tictactoe.State, error)
	MakeMove(ctx context.Context, id string, cell entity.Cell) (usecase.MoveResult, error)
	GetGame(ctx context.Context, id string) (tictactoe.State, error)
	ResetGame(ctx context.Context, id string) (tictactoe.State, error)
}

// NewRouter wires the game routes.
func NewRouter(logger *slog.Logger, games gameService) http.Handler {
	handler := newHandlers(logger, games)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/ping", ping)
	router.Post("/new", handler.newGame)
	router.Post("/move/{gameID}", handler.makeMove)
	router.Get("/board/{gameID}", handler.getBoard)
	router.Post("/reset/{gameID}", handler.resetGame)

	return router
}

// Start serves handler until ctx is cancelled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	log := logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debug("request served",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(started),
			)
		})
	}
}
