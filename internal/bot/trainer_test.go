package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

// scriptedOpponent plays the first free cell of its script and remembers the
// last position it was shown.
type scriptedOpponent struct {
	script []entity.Cell
	seen   *entity.Game
}

func (that *scriptedOpponent) SelectMove(game *entity.Game) (entity.Cell, bool) {
	that.seen = game.Clone()

	for _, cell := range that.script {
		if game.Board[cell.Row][cell.Col] == entity.EmptyCell {
			return cell, true
		}
	}

	return entity.Cell{}, false
}

func TestTrainer_Train(t *testing.T) {
	t.Run("Plays every game and learns", func(t *testing.T) {
		// Given: a fresh learner sparring against a random player
		learner := newTestLearner(t, DefaultLearnerParams(), 11)
		trainer := NewTrainer(learner, NewRandom(seeded(12)), 60)

		// When: training
		stats, err := trainer.Train(context.Background(), 50)

		// Then: results add up and the table is no longer empty
		require.NoError(t, err)
		assert.Equal(t, 50, stats.Games)
		assert.Equal(t, stats.Games, stats.Wins+stats.Losses+stats.Draws)
		assert.NotEmpty(t, learner.Snapshot())
		assert.Less(t, learner.Exploration(), DefaultLearnerParams().Exploration)
	})

	t.Run("Ply limit ends games as draws", func(t *testing.T) {
		// Given: games cut off after two plies, too short for anyone to win
		learner := newTestLearner(t, DefaultLearnerParams(), 11)
		trainer := NewTrainer(learner, NewRandom(seeded(12)), 2)

		// When: training
		stats, err := trainer.Train(context.Background(), 10)

		// Then: everything is a draw
		require.NoError(t, err)
		assert.Equal(t, 10, stats.Draws)
	})

	t.Run("Cancelled context stops training", func(t *testing.T) {
		// Given: an already cancelled context
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		trainer := NewTrainer(newTestLearner(t, DefaultLearnerParams(), 1), NewRandom(seeded(2)), 60)

		// When: training
		stats, err := trainer.Train(ctx, 10)

		// Then: no game is played
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, stats.Games)
	})

	t.Run("Learner turns follow the opening rule", func(t *testing.T) {
		// Given: X opens in the corner, the table sends O to the far corner and,
		// once X threatens the top row, prefers the center over the block
		afterCorner := entity.NewGame("", false, "")
		require.NoError(t, afterCorner.Place(corner))

		threatened := afterCorner.Clone()
		require.NoError(t, threatened.Place(entity.Cell{Row: 2, Col: 2}))
		require.NoError(t, threatened.Place(edge))

		learner := newTestLearner(t, greedyParams(), 3)
		learner.Load(ActionValues{
			afterCorner.Key(): {{Row: 2, Col: 2}: 5},
			threatened.Key():  {center: 10},
		})

		opponent := &scriptedOpponent{script: []entity.Cell{corner, edge, {Row: 1, Col: 0}}}
		trainer := NewTrainer(learner, opponent, 5)

		// When: the learner plays O
		_, err := trainer.playGame(entity.PlayerO)

		// Then: O blocked the top row and the center entry was never chosen
		require.NoError(t, err)
		require.NotNil(t, opponent.seen)
		assert.Equal(t, entity.PlayerO, opponent.seen.Board[0][2])
		assert.Equal(t, entity.PlayerO, opponent.seen.Board[2][2])
		assert.InDelta(t, 10.0, learner.Value(threatened.Key(), center), 1e-9)
	})
}
