package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

var (
	errGameIDRequired = errors.New("game_id is required")
	errCellRequired   = errors.New("cell is required")
	errInvalidCell    = errors.New("cell must be a [row, col] pair")
)

func (that *Server) handleNewGame(ctx context.Context, request *RequestPayload) (ResponsePayload, error) {
	state, err := that.games.CreateGame(ctx, request.AILevel)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to create game: %w", err)
	}

	return ResponsePayload{Game: &state}, nil
}

func (that *Server) handleGameTurn(ctx context.Context, request *RequestPayload) (ResponsePayload, error) {
	if request.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	if request.Cell == nil {
		return ResponsePayload{}, errCellRequired
	}

	if len(request.Cell) != 2 {
		return ResponsePayload{}, errInvalidCell
	}

	cell := entity.Cell{Row: request.Cell[0], Col: request.Cell[1]}

	result, err := that.games.MakeMove(ctx, request.GameID, cell)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed make turn: %w", err)
	}

	return ResponsePayload{Game: &result.State, AIMove: result.AIMove}, nil
}

func (that *Server) handleGameState(ctx context.Context, request *RequestPayload) (ResponsePayload, error) {
	if request.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	state, err := that.games.GetGame(ctx, request.GameID)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to get game: %w", err)
	}

	return ResponsePayload{Game: &state}, nil
}

func (that *Server) handleGameReset(ctx context.Context, request *RequestPayload) (ResponsePayload, error) {
	if request.GameID == "" {
		return ResponsePayload{}, errGameIDRequired
	}

	state, err := that.games.ResetGame(ctx, request.GameID)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to reset game: %w", err)
	}

	return ResponsePayload{Game: &state}, nil
}
