package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

// Decider chooses the computer's moves and learns from finished games.
type Decider interface {
	Decide(game *entity.Game) (entity.Cell, bool, error)
	Finish(game *entity.Game) bool
}

// State is the view of a game handed to clients.
type State struct {
	ID            string            `json:"id"`
	Board         [3][3]entity.Mark `json:"board"`
	CurrentPlayer entity.Mark       `json:"current_player"`
	Winner        entity.Mark       `json:"winner"`
	WinningLine   *entity.Line      `json:"winning_line"`
	Status        string            `json:"status"`
	IsAIGame      bool              `json:"is_ai_game"`
	Difficulty    entity.Difficulty `json:"difficulty,omitempty"`
}

type GameController struct {
	decider         Decider
	repetitionLimit int
}

// NewGameController creates a controller. A repetitionLimit of 0 disables the
// repeated position draw.
func NewGameController(decider Decider, repetitionLimit int) *GameController {
	return &GameController{
		decider:         decider,
		repetitionLimit: repetitionLimit,
	}
}

func (that *GameController) NewGame(id string, aiEnabled bool, difficulty entity.Difficulty) *entity.Game {
	game := entity.NewGame(id, aiEnabled, difficulty)
	that.recordPosition(game)

	return game
}

// ApplyPlayerMove places the human's piece for the side to move.
func (that *GameController) ApplyPlayerMove(game *entity.Game, cell entity.Cell) error {
	if game.IsAITurn() {
		return apperror.ErrNotYourTurn
	}

	if err := game.Place(cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	that.recordPosition(game)

	return nil
}

// MaybeApplyAIMove plays the computer's answer when the game is against the
// computer, undecided and the computer is to move. A position without a legal
// move is recorded as a draw.
func (that *GameController) MaybeApplyAIMove(game *entity.Game) (entity.Cell, bool, error) {
	if !game.IsAITurn() {
		return entity.Cell{}, false, nil
	}

	cell, ok, err := that.decider.Decide(game)
	if err != nil {
		return entity.Cell{}, false, fmt.Errorf("could not decide: %w", err)
	}

	if !ok {
		game.MarkDraw()
		return entity.Cell{}, false, nil
	}

	if err = game.Place(cell); err != nil {
		return entity.Cell{}, false, fmt.Errorf("computer played %s: %w", cell, err)
	}

	that.recordPosition(game)

	return cell, true, nil
}

// Finish reports a decided game to the decider. It returns true when learned
// values changed and should be persisted.
func (that *GameController) Finish(game *entity.Game) bool {
	if !game.IsFinished() {
		return false
	}

	return that.decider.Finish(game)
}

// Reset starts the session over with the same opponent settings.
func (that *GameController) Reset(game *entity.Game) {
	game.Reset()
	that.recordPosition(game)
}

func (that *GameController) Serialize(game *entity.Game) State {
	return State{
		ID:            game.ID,
		Board:         game.Board,
		CurrentPlayer: game.Turn,
		Winner:        game.Winner,
		WinningLine:   game.WinningLine,
		Status:        game.Status(),
		IsAIGame:      game.AIEnabled,
		Difficulty:    game.Difficulty,
	}
}

// recordPosition counts how often the current position occurred and draws the
// game once the limit is reached.
func (that *GameController) recordPosition(game *entity.Game) {
	if that.repetitionLimit <= 0 || game.IsFinished() {
		return
	}

	if game.Positions == nil {
		game.Positions = make(map[string]int)
	}

	position := game.Key()
	game.Positions[position]++

	if game.Positions[position] >= that.repetitionLimit {
		game.MarkDraw()
	}
}
