package bot

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

type TrainingStats struct {
	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// Trainer plays the learner against a sparring strategy and feeds every
// transition back into the table. Learner turns follow the same opening rule
// as served games, so the table only learns positions it will be asked about.
type Trainer struct {
	learner  *Learner
	opponent Strategy
	maxPlies int
}

// NewTrainer creates a trainer. Games longer than maxPlies count as draws.
func NewTrainer(learner *Learner, opponent Strategy, maxPlies int) *Trainer {
	return &Trainer{
		learner:  learner,
		opponent: opponent,
		maxPlies: maxPlies,
	}
}

// Train plays the given number of games, the learner alternating between X and O.
func (that *Trainer) Train(ctx context.Context, games int) (TrainingStats, error) {
	var stats TrainingStats

	for i := range games {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("training interrupted after %d games: %w", stats.Games, err)
		}

		learnerMark := entity.PlayerO
		if i%2 == 0 {
			learnerMark = entity.PlayerX
		}

		winner, err := that.playGame(learnerMark)
		if err != nil {
			return stats, fmt.Errorf("game %d: %w", i+1, err)
		}

		stats.Games++
		switch winner {
		case learnerMark:
			stats.Wins++
		case learnerMark.Opponent():
			stats.Losses++
		default:
			stats.Draws++
		}
	}

	return stats, nil
}

func (that *Trainer) playGame(learnerMark entity.Mark) (entity.Mark, error) {
	game := entity.NewGame("", false, "")
	var pending *entity.Transition

	for plies := 0; plies < that.maxPlies && !game.IsFinished(); plies++ {
		var (
			cell entity.Cell
			ok   bool
		)

		if game.Turn == learnerMark {
			var next *entity.Transition
			if cell, next, ok = learnerTurn(that.learner, game, pending); ok {
				pending = next
			}
		} else {
			cell, ok = that.opponent.SelectMove(game)
		}

		if !ok {
			game.MarkDraw()
			break
		}

		if err := game.Place(cell); err != nil {
			return entity.EmptyCell, fmt.Errorf("illegal move %s: %w", cell, err)
		}
	}

	if !game.IsFinished() {
		game.MarkDraw()
	}

	if pending != nil {
		reward := rewardDraw
		switch game.Winner {
		case learnerMark:
			reward = rewardWin
		case learnerMark.Opponent():
			reward = rewardLoss
		}

		that.learner.Update(pending.State, pending.Action, reward, game.Key())
	}

	that.learner.DecayExploration()

	return game.Winner, nil
}
