package bot

import (
	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

// Random plays any legal cell with equal probability.
type Random struct {
	rnd *rand.Rand
}

func NewRandom(rnd *rand.Rand) *Random {
	if rnd == nil {
		rnd = newRand()
	}

	return &Random{rnd: rnd}
}

func (that *Random) SelectMove(game *entity.Game) (entity.Cell, bool) {
	if game.IsFinished() {
		return entity.Cell{}, false
	}

	return pickRandom(that.rnd, game.AvailableMoves())
}
