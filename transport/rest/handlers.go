package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

var errInvalidBody = errors.New("move must be a [row, col] pair")

type handlers struct {
	logger *slog.Logger
	games  gameService
}

func newHandlers(logger *slog.Logger, games gameService) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

func (that *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.CreateGame(r.Context(), r.URL.Query().Get("aiLevel"))
	if err != nil {
		that.writeError(w, "newGame", err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (that *handlers) makeMove(w http.ResponseWriter, r *http.Request) {
	var move []int
	if err := json.NewDecoder(r.Body).Decode(&move); err != nil || len(move) != 2 {
		that.writeError(w, "makeMove", errInvalidBody)
		return
	}

	cell := entity.Cell{Row: move[0], Col: move[1]}

	result, err := that.games.MakeMove(r.Context(), chi.URLParam(r, "gameID"), cell)
	if err != nil {
		that.writeError(w, "makeMove", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (that *handlers) getBoard(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, "getBoard", err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (that *handlers) resetGame(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.ResetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, "resetGame", err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInvalidBody),
		errors.Is(err, apperror.ErrInvalidCoordinate),
		errors.Is(err, apperror.ErrUnknownDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotYourTurn):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
