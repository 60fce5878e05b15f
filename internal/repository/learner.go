package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/threetoe-backend/internal/bot"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
)

// LearnerRepository keeps the action-value table in a single Redis hash whose
// fields are "<state>|<row>,<col>".
type LearnerRepository interface {
	Save(ctx context.Context, values bot.ActionValues) error
	Load(ctx context.Context) (bot.ActionValues, error)
}

type dbLearner struct {
	client *redis.Client
	key    string
}

func NewLearnerRepository(client *redis.Client, key string) LearnerRepository {
	return &dbLearner{
		client: client,
		key:    key,
	}
}

func (that *dbLearner) Save(ctx context.Context, values bot.ActionValues) error {
	fields := make(map[string]any)
	for state, actions := range values {
		for action, value := range actions {
			fields[state+"|"+action.String()] = strconv.FormatFloat(value, 'g', -1, 64)
		}
	}

	if len(fields) == 0 {
		return nil
	}

	if err := that.client.HSet(ctx, that.key, fields).Err(); err != nil {
		return fmt.Errorf("failed to save learner table: %w", err)
	}

	return nil
}

func (that *dbLearner) Load(ctx context.Context) (bot.ActionValues, error) {
	fields, err := that.client.HGetAll(ctx, that.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load learner table: %w", err)
	}

	values := make(bot.ActionValues)
	for field, raw := range fields {
		state, action, err := parseField(field)
		if err != nil {
			return nil, err
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value for %q: %w", field, err)
		}

		if values[state] == nil {
			values[state] = make(map[entity.Cell]float64)
		}
		values[state][action] = value
	}

	return values, nil
}

func parseField(field string) (string, entity.Cell, error) {
	separator := strings.LastIndex(field, "|")
	if separator < 0 {
		return "", entity.Cell{}, fmt.Errorf("bad learner field %q", field)
	}

	var action entity.Cell
	if _, err := fmt.Sscanf(field[separator+1:], "%d,%d", &action.Row, &action.Col); err != nil {
		return "", entity.Cell{}, fmt.Errorf("bad learner action in %q: %w", field, err)
	}

	return field[:separator], action, nil
}
