package bot

import (
	"fmt"
	"maps"
	"math"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

// LearnerParams configures the temporal-difference update and the
// epsilon-greedy exploration.
type LearnerParams struct {
	LearningRate     float64
	Discount         float64
	Exploration      float64
	ExplorationDecay float64
	MinExploration   float64
}

func DefaultLearnerParams() LearnerParams {
	return LearnerParams{
		LearningRate:     0.1,
		Discount:         0.9,
		Exploration:      0.2,
		ExplorationDecay: 0.995,
		MinExploration:   0.01,
	}
}

func (that LearnerParams) Validate() error {
	switch {
	case that.LearningRate <= 0 || that.LearningRate > 1:
		return fmt.Errorf("%w: learning rate must be in (0,1], got %v", apperror.ErrMissingConfiguration, that.LearningRate)
	case that.Discount < 0 || that.Discount > 1:
		return fmt.Errorf("%w: discount must be in [0,1], got %v", apperror.ErrMissingConfiguration, that.Discount)
	case that.Exploration < 0 || that.Exploration > 1:
		return fmt.Errorf("%w: exploration must be in [0,1], got %v", apperror.ErrMissingConfiguration, that.Exploration)
	case that.ExplorationDecay <= 0 || that.ExplorationDecay > 1:
		return fmt.Errorf("%w: exploration decay must be in (0,1], got %v", apperror.ErrMissingConfiguration, that.ExplorationDecay)
	case that.MinExploration < 0 || that.MinExploration > that.Exploration:
		return fmt.Errorf("%w: min exploration must be in [0,exploration], got %v", apperror.ErrMissingConfiguration, that.MinExploration)
	}

	return nil
}

// ActionValues is the learned table: state key -> move -> estimate.
type ActionValues map[string]map[entity.Cell]float64

// Learner is a tabular action-value estimator. One instance may be shared by
// many games; every method takes the lock.
type Learner struct {
	mu sync.Mutex

	params      LearnerParams
	exploration float64
	table       ActionValues
	rnd         *rand.Rand
}

func NewLearner(params LearnerParams, rnd *rand.Rand) (*Learner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if rnd == nil {
		rnd = newRand()
	}

	return &Learner{
		params:      params,
		exploration: params.Exploration,
		table:       make(ActionValues),
		rnd:         rnd,
	}, nil
}

// Value returns the stored estimate, 0 when the pair was never updated.
func (that *Learner) Value(state string, action entity.Cell) float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.value(state, action)
}

// Update moves the estimate for (state, action) toward
// reward + discount * max_a' Q(next, a').
func (that *Learner) Update(state string, action entity.Cell, reward float64, next string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.update(state, action, reward, next)
}

// SelectAction explores with the current exploration rate, otherwise plays the
// highest valued legal move with a random tie-break.
func (that *Learner) SelectAction(state string, legal []entity.Cell) (entity.Cell, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.selectAction(state, legal)
}

// Act rewards the previous decision with the transition into state and picks
// the next action, atomically.
func (that *Learner) Act(previous *entity.Transition, reward float64, state string, legal []entity.Cell) (entity.Cell, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if previous != nil {
		that.update(previous.State, previous.Action, reward, state)
	}

	return that.selectAction(state, legal)
}

// DecayExploration is meant to be called once per finished game.
func (that *Learner) DecayExploration() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.exploration = math.Max(that.exploration*that.params.ExplorationDecay, that.params.MinExploration)
}

func (that *Learner) Exploration() float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.exploration
}

// SelectMove lets the learner play as a Strategy.
func (that *Learner) SelectMove(game *entity.Game) (entity.Cell, bool) {
	if game.IsFinished() {
		return entity.Cell{}, false
	}

	return that.SelectAction(game.Key(), game.AvailableMoves())
}

// Snapshot returns a deep copy of the table.
func (that *Learner) Snapshot() ActionValues {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := make(ActionValues, len(that.table))
	for state, actions := range that.table {
		snapshot[state] = maps.Clone(actions)
	}

	return snapshot
}

// Load merges stored estimates into the table, overwriting existing pairs.
func (that *Learner) Load(values ActionValues) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for state, actions := range values {
		if that.table[state] == nil {
			that.table[state] = make(map[entity.Cell]float64, len(actions))
		}

		maps.Copy(that.table[state], actions)
	}
}

func (that *Learner) value(state string, action entity.Cell) float64 {
	return that.table[state][action]
}

func (that *Learner) update(state string, action entity.Cell, reward float64, next string) {
	maxNext := 0.0
	if actions := that.table[next]; len(actions) > 0 {
		maxNext = math.Inf(-1)
		for _, value := range actions {
			maxNext = math.Max(maxNext, value)
		}
	}

	current := that.value(state, action)
	target := reward + that.params.Discount*maxNext

	if that.table[state] == nil {
		that.table[state] = make(map[entity.Cell]float64)
	}

	that.table[state][action] = current + that.params.LearningRate*(target-current)
}

func (that *Learner) selectAction(state string, legal []entity.Cell) (entity.Cell, bool) {
	if len(legal) == 0 {
		return entity.Cell{}, false
	}

	if that.rnd.Float64() < that.exploration {
		return pickRandom(that.rnd, legal)
	}

	best := math.Inf(-1)
	var ties []entity.Cell

	for _, action := range legal {
		value := that.value(state, action)

		switch {
		case value > best:
			best = value
			ties = append(ties[:0], action)
		case value == best:
			ties = append(ties, action)
		}
	}

	return pickRandom(that.rnd, ties)
}
