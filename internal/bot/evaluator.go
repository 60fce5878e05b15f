package bot

import (
	"fmt"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

// Weights tune the static evaluation. Win is the value of a complete line,
// Threat the value of two pieces with the third cell free.
type Weights struct {
	Win    int
	Threat int
}

func (that Weights) Validate() error {
	if that.Win <= 0 || that.Threat <= 0 {
		return fmt.Errorf("%w: evaluator weights must be positive, got win=%d threat=%d",
			apperror.ErrMissingConfiguration, that.Win, that.Threat)
	}

	return nil
}

// Evaluate scores the board from maximizer's point of view by summing the
// contribution of every line.
func Evaluate(game *entity.Game, maximizer entity.Mark, weights Weights) int {
	minimizer := maximizer.Opponent()
	score := 0

	for _, line := range entity.WinLines {
		own, other := 0, 0
		for _, cell := range line {
			switch game.Board[cell.Row][cell.Col] {
			case maximizer:
				own++
			case minimizer:
				other++
			}
		}

		switch {
		case own == 3:
			score += weights.Win
		case other == 3:
			score -= weights.Win
		case own == 2 && other == 0:
			score += weights.Threat
		case other == 2 && own == 0:
			score -= weights.Threat
		}
	}

	return score
}
