package bot

import (
	"time"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

// Strategy picks the next cell for the player to move. It reports false when
// there is no legal move, which callers treat as a draw.
type Strategy interface {
	SelectMove(game *entity.Game) (entity.Cell, bool)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}

// pickRandom chooses uniformly among cells.
func pickRandom(rnd *rand.Rand, cells []entity.Cell) (entity.Cell, bool) {
	if len(cells) == 0 {
		return entity.Cell{}, false
	}

	return cells[rnd.Intn(len(cells))], true
}
