package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/threetoe-backend/internal/bot"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
	"github.com/rocketscienceinc/threetoe-backend/internal/pkg"
	"github.com/rocketscienceinc/threetoe-backend/internal/tictactoe"
)

type gameRepoDep interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type learnerRepoDep interface {
	Save(ctx context.Context, values bot.ActionValues) error
}

type learnerDep interface {
	Snapshot() bot.ActionValues
}

// MoveResult is the game after the player's move and the computer's answer.
type MoveResult struct {
	tictactoe.State
	AIMove *entity.Cell `json:"ai_move,omitempty"`
}

type GameManager struct {
	logger *slog.Logger

	gameRepo    gameRepoDep
	learnerRepo learnerRepoDep
	learner     learnerDep
	controller  *tictactoe.GameController

	locks *gameLocks
}

type GameManagerOption func(manager *GameManager)

// WithLearnerPersistence saves the learner's table whenever a game it took
// part in is decided.
func WithLearnerPersistence(learner learnerDep, learnerRepo learnerRepoDep) GameManagerOption {
	return func(manager *GameManager) {
		manager.learner = learner
		manager.learnerRepo = learnerRepo
	}
}

func NewGameManager(
	logger *slog.Logger,
	gameRepo gameRepoDep,
	controller *tictactoe.GameController,
	options ...GameManagerOption,
) *GameManager {
	manager := &GameManager{
		logger:     logger,
		gameRepo:   gameRepo,
		controller: controller,
		locks:      newGameLocks(),
	}

	for _, option := range options {
		option(manager)
	}

	return manager
}

// CreateGame starts a session. An empty level or "none" is a game between two humans.
func (that *GameManager) CreateGame(ctx context.Context, aiLevel string) (tictactoe.State, error) {
	log := that.logger.With("method", "CreateGame")

	difficulty, aiEnabled, err := entity.ParseDifficulty(aiLevel)
	if err != nil {
		return tictactoe.State{}, err
	}

	game := that.controller.NewGame(pkg.GenerateGameID(), aiEnabled, difficulty)
	if err = that.updateGame(ctx, game); err != nil {
		return tictactoe.State{}, err
	}

	log.Info("game created", "game_id", game.ID, "difficulty", difficulty)

	return that.controller.Serialize(game), nil
}

// MakeMove applies the player's move and, in games against the computer, its answer.
func (that *GameManager) MakeMove(ctx context.Context, id string, cell entity.Cell) (MoveResult, error) {
	log := that.logger.With("method", "MakeMove", "game_id", id)

	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return MoveResult{}, err
	}

	if err = that.controller.ApplyPlayerMove(game, cell); err != nil {
		return MoveResult{}, err
	}

	var result MoveResult

	// the player's move is only stored together with the computer's answer
	aiMove, ok, err := that.controller.MaybeApplyAIMove(game)
	if err != nil {
		log.Error("computer could not move", "error", err)
		return MoveResult{}, fmt.Errorf("computer could not move: %w", err)
	}

	if ok {
		log.Debug("computer moved", "cell", aiMove.String())
		result.AIMove = &aiMove
	}

	if that.controller.Finish(game) {
		that.saveLearner(ctx)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return MoveResult{}, err
	}

	if game.IsFinished() {
		log.Info("game finished", "winner", game.Winner)
	}

	result.State = that.controller.Serialize(game)

	return result, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (tictactoe.State, error) {
	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return tictactoe.State{}, err
	}

	return that.controller.Serialize(game), nil
}

// ResetGame clears the board and keeps whether and how the computer plays.
func (that *GameManager) ResetGame(ctx context.Context, id string) (tictactoe.State, error) {
	unlock := that.locks.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return tictactoe.State{}, err
	}

	that.controller.Reset(game)
	if err = that.updateGame(ctx, game); err != nil {
		return tictactoe.State{}, err
	}

	that.logger.Info("game reset", "method", "ResetGame", "game_id", id)

	return that.controller.Serialize(game), nil
}

// DeleteGame ends a session early.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) saveLearner(ctx context.Context) {
	if that.learner == nil || that.learnerRepo == nil {
		return
	}

	log := that.logger.With("method", "saveLearner")

	if err := that.learnerRepo.Save(ctx, that.learner.Snapshot()); err != nil {
		log.Error("failed to save learner table", "error", err)
	}
}
