package bot

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicyConfig(source Source) PolicyConfig {
	return PolicyConfig{
		WinScore:   1000,
		Medium:     TierConfig{Depth: 2, Weights: testWeights},
		Hard:       TierConfig{Depth: 6, Weights: testWeights},
		HardSource: source,
	}
}

func newTestPolicy(t *testing.T, source Source, learner *Learner) *Policy {
	t.Helper()

	var seed uint64
	policy, err := NewPolicy(testPolicyConfig(source), learner, WithRandFactory(func() *rand.Rand {
		seed++
		return seeded(seed)
	}))
	require.NoError(t, err)

	return policy
}

// aiGame rebuilds a position with the computer playing O.
func aiGame(difficulty entity.Difficulty, movesX, movesO []entity.Cell, turn entity.Mark) *entity.Game {
	game := entity.FromHistory(movesX, movesO, turn)
	game.AIEnabled = true
	game.AIMark = entity.PlayerO
	game.Difficulty = difficulty

	return game
}

func TestNewPolicy(t *testing.T) {
	t.Run("Missing tier settings are rejected", func(t *testing.T) {
		config := testPolicyConfig(SourceSearch)
		config.Medium.Depth = 0

		_, err := NewPolicy(config, nil)

		require.ErrorIs(t, err, apperror.ErrMissingConfiguration)
	})

	t.Run("Win score must dominate the heuristic", func(t *testing.T) {
		config := testPolicyConfig(SourceSearch)
		config.WinScore = 50

		_, err := NewPolicy(config, nil)

		require.ErrorIs(t, err, apperror.ErrMissingConfiguration)
	})

	t.Run("Unknown hard source is rejected", func(t *testing.T) {
		_, err := NewPolicy(testPolicyConfig("oracle"), nil)

		require.ErrorIs(t, err, apperror.ErrMissingConfiguration)
	})

	t.Run("Learner source needs a learner", func(t *testing.T) {
		_, err := NewPolicy(testPolicyConfig(SourceLearner), nil)

		require.ErrorIs(t, err, apperror.ErrMissingConfiguration)
	})
}

func TestPolicy_Strategy(t *testing.T) {
	learner := newTestLearner(t, DefaultLearnerParams(), 1)

	t.Run("Tiers map to their move sources", func(t *testing.T) {
		policy := newTestPolicy(t, SourceSearch, nil)

		easy, err := policy.Strategy(entity.EasyDifficulty)
		require.NoError(t, err)
		assert.IsType(t, &Random{}, easy)

		medium, err := policy.Strategy(entity.MediumDifficulty)
		require.NoError(t, err)
		assert.IsType(t, &Searcher{}, medium)

		hard, err := policy.Strategy(entity.HardDifficulty)
		require.NoError(t, err)
		assert.IsType(t, &Searcher{}, hard)
	})

	t.Run("Hard tier can be backed by the learner", func(t *testing.T) {
		policy := newTestPolicy(t, SourceLearner, learner)

		hard, err := policy.Strategy(entity.HardDifficulty)

		require.NoError(t, err)
		assert.Same(t, learner, hard)
	})

	t.Run("Unknown tier", func(t *testing.T) {
		policy := newTestPolicy(t, SourceSearch, nil)

		_, err := policy.Strategy("impossible")

		require.ErrorIs(t, err, apperror.ErrUnknownDifficulty)
	})
}

func TestPolicy_Decide(t *testing.T) {
	t.Run("Opening block applies on every tier", func(t *testing.T) {
		for _, difficulty := range []entity.Difficulty{
			entity.EasyDifficulty, entity.MediumDifficulty, entity.HardDifficulty,
		} {
			// Given: X threatens the top row early in the game
			game := aiGame(difficulty,
				[]entity.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
				[]entity.Cell{{Row: 1, Col: 1}},
				entity.PlayerO,
			)

			// When: the computer decides
			move, ok, err := newTestPolicy(t, SourceSearch, nil).Decide(game)

			// Then: it blocks
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, entity.Cell{Row: 0, Col: 2}, move, "difficulty %s", difficulty)
		}
	})

	t.Run("Own win beats blocking", func(t *testing.T) {
		// Given: both sides have an open two
		game := aiGame(entity.EasyDifficulty,
			[]entity.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
			[]entity.Cell{{Row: 1, Col: 0}, {Row: 1, Col: 1}},
			entity.PlayerO,
		)

		// When: the computer decides
		move, ok, err := newTestPolicy(t, SourceSearch, nil).Decide(game)

		// Then: it completes its own line
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, entity.Cell{Row: 1, Col: 2}, move)
	})

	t.Run("Hard search blocks after the opening", func(t *testing.T) {
		// Given: six pieces are down and X threatens the left column
		game := aiGame(entity.HardDifficulty,
			[]entity.Cell{{Row: 1, Col: 2}, {Row: 0, Col: 0}, {Row: 1, Col: 0}},
			[]entity.Cell{{Row: 1, Col: 1}, {Row: 0, Col: 1}, {Row: 2, Col: 2}},
			entity.PlayerO,
		)
		require.False(t, game.IsFinished())

		// When: the computer decides
		move, ok, err := newTestPolicy(t, SourceSearch, nil).Decide(game)

		// Then: the search keeps X from winning at once
		require.NoError(t, err)
		require.True(t, ok)

		child := game.Clone()
		require.NoError(t, child.Place(move))
		for _, reply := range child.AvailableMoves() {
			assert.False(t, winsWith(child, entity.PlayerX, reply), "X wins with %s after %s", reply, move)
		}
	})

	t.Run("Moves are legal", func(t *testing.T) {
		// Given: an early position with no threats
		game := aiGame(entity.EasyDifficulty, []entity.Cell{{Row: 1, Col: 1}}, nil, entity.PlayerO)
		policy := newTestPolicy(t, SourceSearch, nil)

		for range 20 {
			// When: deciding repeatedly
			move, ok, err := policy.Decide(game)

			// Then: the move is on an empty cell
			require.NoError(t, err)
			require.True(t, ok)
			assert.Contains(t, game.AvailableMoves(), move)
		}
	})

	t.Run("Unknown tier is an error", func(t *testing.T) {
		game := aiGame("impossible", []entity.Cell{{Row: 1, Col: 1}}, nil, entity.PlayerO)

		_, _, err := newTestPolicy(t, SourceSearch, nil).Decide(game)

		require.ErrorIs(t, err, apperror.ErrUnknownDifficulty)
	})

	t.Run("Finished game has no move", func(t *testing.T) {
		game := aiGame(entity.MediumDifficulty,
			[]entity.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
			[]entity.Cell{{Row: 1, Col: 0}, {Row: 1, Col: 1}},
			entity.PlayerO,
		)

		_, ok, err := newTestPolicy(t, SourceSearch, nil).Decide(game)

		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// quietPosition has six pieces down and no immediate win for either side.
func quietPosition() *entity.Game {
	return aiGame(entity.HardDifficulty,
		[]entity.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 1}},
		[]entity.Cell{{Row: 1, Col: 1}, {Row: 2, Col: 0}, {Row: 1, Col: 0}},
		entity.PlayerO,
	)
}

func TestPolicy_Learner(t *testing.T) {
	t.Run("Decide remembers the decision", func(t *testing.T) {
		// Given: a learner-backed hard tier
		learner := newTestLearner(t, greedyParams(), 1)
		policy := newTestPolicy(t, SourceLearner, learner)
		game := quietPosition()
		state := game.Key()

		// When: the computer decides
		move, ok, err := policy.Decide(game)

		// Then: the pending transition points at this decision
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, game.Pending)
		assert.Equal(t, entity.Transition{State: state, Action: move}, *game.Pending)
	})

	t.Run("Opening moves are remembered too", func(t *testing.T) {
		// Given: an early threat in a learner game
		learner := newTestLearner(t, greedyParams(), 1)
		policy := newTestPolicy(t, SourceLearner, learner)
		game := aiGame(entity.HardDifficulty,
			[]entity.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
			[]entity.Cell{{Row: 1, Col: 1}},
			entity.PlayerO,
		)

		// When: the computer decides
		move, ok, err := policy.Decide(game)

		// Then: the block is chosen and recorded
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, entity.Cell{Row: 0, Col: 2}, move)
		require.NotNil(t, game.Pending)
		assert.Equal(t, move, game.Pending.Action)
	})

	t.Run("Finish rewards a win", func(t *testing.T) {
		// Given: a decision was made and the computer went on to win
		learner := newTestLearner(t, DefaultLearnerParams(), 1)
		policy := newTestPolicy(t, SourceLearner, learner)
		game := quietPosition()
		_, ok, err := policy.Decide(game)
		require.NoError(t, err)
		require.True(t, ok)
		pending := *game.Pending
		game.Winner = entity.PlayerO

		// When: the game is finished
		changed := policy.Finish(game)

		// Then: the decision earned the win reward and exploration decayed
		assert.True(t, changed)
		assert.Nil(t, game.Pending)
		assert.InDelta(t, 0.1, learner.Value(pending.State, pending.Action), 1e-12)
		assert.InDelta(t, 0.2*0.995, learner.Exploration(), 1e-12)
	})

	t.Run("Finish penalizes a loss", func(t *testing.T) {
		learner := newTestLearner(t, DefaultLearnerParams(), 1)
		policy := newTestPolicy(t, SourceLearner, learner)
		game := quietPosition()
		_, ok, err := policy.Decide(game)
		require.NoError(t, err)
		require.True(t, ok)
		pending := *game.Pending
		game.Winner = entity.PlayerX

		require.True(t, policy.Finish(game))

		assert.InDelta(t, -0.1, learner.Value(pending.State, pending.Action), 1e-12)
	})

	t.Run("Finish ignores unfinished and search games", func(t *testing.T) {
		learner := newTestLearner(t, DefaultLearnerParams(), 1)

		ongoing := quietPosition()
		ongoing.Pending = &entity.Transition{State: "s", Action: center}
		assert.False(t, newTestPolicy(t, SourceLearner, learner).Finish(ongoing))
		assert.NotNil(t, ongoing.Pending)

		searched := quietPosition()
		searched.Winner = entity.PlayerO
		searched.Pending = &entity.Transition{State: "s", Action: center}
		assert.False(t, newTestPolicy(t, SourceSearch, nil).Finish(searched))

		assert.InDelta(t, 0.2, learner.Exploration(), 1e-12)
	})
}
