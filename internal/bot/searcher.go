package bot

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

const (
	defaultDepth    = 3
	defaultWinScore = 1000
)

var defaultWeights = Weights{Win: 100, Threat: 10}

type SearchOption func(searcher *Searcher)

// WithDepth limits how many plies are simulated, the root move included.
func WithDepth(depth int) SearchOption {
	return func(searcher *Searcher) {
		searcher.depth = depth
	}
}

func WithWeights(weights Weights) SearchOption {
	return func(searcher *Searcher) {
		searcher.weights = weights
	}
}

// WithWinScore sets the magnitude of a decided game.
func WithWinScore(score int) SearchOption {
	return func(searcher *Searcher) {
		searcher.winScore = score
	}
}

// WithRand sets the source used to break ties between equally good moves.
func WithRand(rnd *rand.Rand) SearchOption {
	return func(searcher *Searcher) {
		searcher.rnd = rnd
	}
}

// WithRepetitionLimit makes root moves that complete the limit-th occurrence of
// a position score as a draw, mirroring the controller. Zero disables it.
func WithRepetitionLimit(limit int) SearchOption {
	return func(searcher *Searcher) {
		searcher.repetitionLimit = limit
	}
}

// Searcher is a depth-bounded minimax player. Positions are memoized for the
// duration of one SelectMove call only.
type Searcher struct {
	depth           int
	winScore        int
	weights         Weights
	rnd             *rand.Rand
	repetitionLimit int
}

type memoKey struct {
	state      string
	maximizing bool
	depth      int
}

func NewSearcher(options ...SearchOption) *Searcher {
	searcher := &Searcher{
		depth:    defaultDepth,
		winScore: defaultWinScore,
		weights:  defaultWeights,
	}

	for _, option := range options {
		option(searcher)
	}

	if searcher.rnd == nil {
		searcher.rnd = newRand()
	}

	if searcher.depth < 1 {
		searcher.depth = 1
	}

	return searcher
}

// SelectMove plays one of the best scoring moves for the side to move,
// chosen uniformly among ties.
func (that *Searcher) SelectMove(game *entity.Game) (entity.Cell, bool) {
	scores := that.ScoreMoves(game)
	if len(scores) == 0 {
		return entity.Cell{}, false
	}

	best := math.MinInt
	var ties []entity.Cell

	for _, move := range game.AvailableMoves() {
		score, ok := scores[move]
		if !ok {
			continue
		}

		switch {
		case score > best:
			best = score
			ties = append(ties[:0], move)
		case score == best:
			ties = append(ties, move)
		}
	}

	return pickRandom(that.rnd, ties)
}

// ScoreMoves returns the minimax value of every legal root move for the side to move.
func (that *Searcher) ScoreMoves(game *entity.Game) map[entity.Cell]int {
	if game.IsFinished() {
		return nil
	}

	maximizer := game.Turn
	memo := make(map[memoKey]int)
	scores := make(map[entity.Cell]int)

	for _, move := range game.AvailableMoves() {
		child := game.Clone()
		if err := child.Place(move); err != nil {
			continue
		}

		if that.repeatsOut(game, child) {
			scores[move] = 0
			continue
		}

		scores[move] = that.minimax(child, maximizer, false, that.depth-1, memo)
	}

	return scores
}

func (that *Searcher) minimax(game *entity.Game, maximizer entity.Mark, maximizing bool, depth int, memo map[memoKey]int) int {
	// a sooner win is worth more than a later one
	switch game.Winner {
	case maximizer:
		return that.winScore + depth
	case maximizer.Opponent():
		return -that.winScore - depth
	case entity.PlayerTie:
		return 0
	}

	moves := game.AvailableMoves()
	if len(moves) == 0 {
		return 0
	}

	if depth <= 0 {
		return Evaluate(game, maximizer, that.weights)
	}

	key := memoKey{state: game.Key(), maximizing: maximizing, depth: depth}
	if score, ok := memo[key]; ok {
		return score
	}

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for _, move := range moves {
		child := game.Clone()
		if err := child.Place(move); err != nil {
			continue
		}

		score := that.minimax(child, maximizer, !maximizing, depth-1, memo)
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	memo[key] = best

	return best
}

// repeatsOut reports whether child is the position that would end the game in
// a repetition draw. Only the root ply is checked against the game's history.
func (that *Searcher) repeatsOut(game, child *entity.Game) bool {
	if that.repetitionLimit <= 0 || child.IsFinished() {
		return false
	}

	return game.Positions[child.Key()]+1 >= that.repetitionLimit
}
