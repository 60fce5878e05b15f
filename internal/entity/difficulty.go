package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
)

type Difficulty string

const (
	EasyDifficulty   Difficulty = "easy"
	MediumDifficulty Difficulty = "medium"
	HardDifficulty   Difficulty = "hard"
)

// ParseDifficulty maps an aiLevel value to a tier. An empty value or "none"
// means a game without a computer opponent.
func ParseDifficulty(level string) (Difficulty, bool, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(level))) {
	case "", "none":
		return "", false, nil
	case EasyDifficulty:
		return EasyDifficulty, true, nil
	case MediumDifficulty:
		return MediumDifficulty, true, nil
	case HardDifficulty:
		return HardDifficulty, true, nil
	default:
		return "", false, fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, level)
	}
}
