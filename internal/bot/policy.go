package bot

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

type Source string

const (
	SourceSearch  Source = "search"
	SourceLearner Source = "learner"
)

// openingPieces is the combined history length below which the block rule applies.
const openingPieces = 6

const (
	rewardWin  = 1.0
	rewardLoss = -1.0
	rewardDraw = 0.0
)

type TierConfig struct {
	Depth   int
	Weights Weights
}

func (that TierConfig) Validate() error {
	if that.Depth < 1 {
		return fmt.Errorf("%w: search depth must be at least 1, got %d", apperror.ErrMissingConfiguration, that.Depth)
	}

	return that.Weights.Validate()
}

type PolicyConfig struct {
	WinScore   int
	Medium     TierConfig
	Hard       TierConfig
	HardSource Source

	// RepetitionLimit matches the controller's repetition draw, 0 when disabled.
	RepetitionLimit int
}

func (that PolicyConfig) Validate() error {
	for name, tier := range map[string]TierConfig{"medium": that.Medium, "hard": that.Hard} {
		if err := tier.Validate(); err != nil {
			return fmt.Errorf("%s tier: %w", name, err)
		}

		// a heuristic cutoff must never outweigh a real result
		if that.WinScore <= len(entity.WinLines)*tier.Weights.Threat {
			return fmt.Errorf("%w: win score %d does not dominate %s threat weight %d",
				apperror.ErrMissingConfiguration, that.WinScore, name, tier.Weights.Threat)
		}
	}

	switch that.HardSource {
	case SourceSearch, SourceLearner:
		return nil
	default:
		return fmt.Errorf("%w: unknown hard source %q", apperror.ErrMissingConfiguration, that.HardSource)
	}
}

// Policy maps a difficulty tier to a move source and applies the opening
// block rule on top of it.
type Policy struct {
	config  PolicyConfig
	learner *Learner
	newRand func() *rand.Rand
}

type PolicyOption func(policy *Policy)

// WithRandFactory replaces the per-decision random source, for reproducible games.
func WithRandFactory(factory func() *rand.Rand) PolicyOption {
	return func(policy *Policy) {
		policy.newRand = factory
	}
}

func NewPolicy(config PolicyConfig, learner *Learner, options ...PolicyOption) (*Policy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.HardSource == SourceLearner && learner == nil {
		return nil, fmt.Errorf("%w: hard tier uses the learner but none was provided", apperror.ErrMissingConfiguration)
	}

	policy := &Policy{
		config:  config,
		learner: learner,
		newRand: newRand,
	}

	for _, option := range options {
		option(policy)
	}

	return policy, nil
}

// Strategy builds the move source of a tier. Each call gets its own random
// source, so strategies must not be shared between games.
func (that *Policy) Strategy(difficulty entity.Difficulty) (Strategy, error) {
	switch difficulty {
	case entity.EasyDifficulty:
		return NewRandom(that.newRand()), nil
	case entity.MediumDifficulty:
		return that.searcher(that.config.Medium), nil
	case entity.HardDifficulty:
		if that.config.HardSource == SourceLearner {
			return that.learner, nil
		}

		return that.searcher(that.config.Hard), nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, difficulty)
	}
}

// Decide picks the computer's move. For learner-driven games it also rewards
// the previous decision and remembers this one in game.Pending.
func (that *Policy) Decide(game *entity.Game) (entity.Cell, bool, error) {
	if that.usesLearner(game) {
		cell, ok := that.learnerMove(game)
		return cell, ok, nil
	}

	if cell, ok := openingMove(game); ok {
		return cell, true, nil
	}

	strategy, err := that.Strategy(game.Difficulty)
	if err != nil {
		return entity.Cell{}, false, err
	}

	cell, ok := strategy.SelectMove(game)

	return cell, ok, nil
}

// Finish hands the final reward of a learner-driven game to the learner and
// decays exploration. It reports whether the learner changed.
func (that *Policy) Finish(game *entity.Game) bool {
	if !that.usesLearner(game) || game.Pending == nil || !game.IsFinished() {
		return false
	}

	reward := rewardDraw
	switch game.Winner {
	case game.AIMark:
		reward = rewardWin
	case game.AIMark.Opponent():
		reward = rewardLoss
	}

	that.learner.Update(game.Pending.State, game.Pending.Action, reward, game.Key())
	that.learner.DecayExploration()
	game.Pending = nil

	return true
}

func (that *Policy) usesLearner(game *entity.Game) bool {
	return game.Difficulty == entity.HardDifficulty && that.config.HardSource == SourceLearner
}

func (that *Policy) learnerMove(game *entity.Game) (entity.Cell, bool) {
	cell, pending, ok := learnerTurn(that.learner, game, game.Pending)
	if !ok {
		return entity.Cell{}, false
	}

	game.Pending = pending

	return cell, true
}

// learnerTurn plays one learner move: the opening rule first, the table
// otherwise. The previous transition is closed with a zero reward either way
// and the returned one is left open until the next turn or the end of the game.
func learnerTurn(learner *Learner, game *entity.Game, previous *entity.Transition) (entity.Cell, *entity.Transition, bool) {
	if game.IsFinished() {
		return entity.Cell{}, nil, false
	}

	state := game.Key()

	cell, ok := openingMove(game)
	if ok {
		if previous != nil {
			learner.Update(previous.State, previous.Action, rewardDraw, state)
		}
	} else {
		cell, ok = learner.Act(previous, rewardDraw, state, game.AvailableMoves())
	}

	if !ok {
		return entity.Cell{}, nil, false
	}

	return cell, &entity.Transition{State: state, Action: cell}, true
}

func (that *Policy) searcher(tier TierConfig) *Searcher {
	return NewSearcher(
		WithDepth(tier.Depth),
		WithWeights(tier.Weights),
		WithWinScore(that.config.WinScore),
		WithRand(that.newRand()),
		WithRepetitionLimit(that.config.RepetitionLimit),
	)
}

// openingMove applies while both players have not yet put down three pieces:
// take an immediate win, otherwise block a cell where the opponent would
// complete a line on their next placement.
func openingMove(game *entity.Game) (entity.Cell, bool) {
	if game.IsFinished() || game.PieceCount() >= openingPieces {
		return entity.Cell{}, false
	}

	me := game.Turn
	moves := game.AvailableMoves()

	for _, move := range moves {
		if winsWith(game, me, move) {
			return move, true
		}
	}

	for _, move := range moves {
		if winsWith(game, me.Opponent(), move) {
			return move, true
		}
	}

	return entity.Cell{}, false
}

// winsWith simulates player placing on cell, eviction included.
func winsWith(game *entity.Game, player entity.Mark, cell entity.Cell) bool {
	clone := game.Clone()
	clone.Turn = player

	if err := clone.Place(cell); err != nil {
		return false
	}

	return clone.Winner == player
}
