// Command trainer plays the learner against a sparring strategy and stores
// the resulting action-value table in Redis, where the server loads it from.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/threetoe-backend/internal/bot"
	"github.com/rocketscienceinc/threetoe-backend/internal/config"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
	"github.com/rocketscienceinc/threetoe-backend/internal/repository"
	"github.com/rocketscienceinc/threetoe-backend/internal/repository/storage"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	games := flag.Int("games", 10000, "number of training games")
	batch := flag.Int("batch", 500, "games between saves")
	opponent := flag.String("opponent", "easy", "sparring tier: easy, medium or hard")
	maxPlies := flag.Int("max-plies", 60, "plies after which a game counts as a draw")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger, *configPath, *games, *batch, entity.Difficulty(*opponent), *maxPlies); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string, games, batch int, opponent entity.Difficulty, maxPlies int) error {
	if games < 1 || batch < 1 {
		return fmt.Errorf("games and batch must be positive, got %d and %d", games, batch)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	client, err := storage.New(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return err
	}
	defer client.Close()

	learner, err := bot.NewLearner(conf.AI.LearnerParams(), nil)
	if err != nil {
		return err
	}

	learnerRepo := repository.NewLearnerRepository(client, conf.AI.Learner.TableKey)

	values, err := learnerRepo.Load(ctx)
	if err != nil {
		return err
	}
	learner.Load(values)

	// the sparring partner always searches, whatever the server's hard tier uses
	policyConfig, err := conf.AI.PolicyConfig()
	if err != nil {
		return err
	}
	policyConfig.HardSource = bot.SourceSearch

	policy, err := bot.NewPolicy(policyConfig, nil)
	if err != nil {
		return err
	}

	sparring, err := policy.Strategy(opponent)
	if err != nil {
		return err
	}

	trainer := bot.NewTrainer(learner, sparring, maxPlies)
	log := logger.With("opponent", opponent, "table_key", conf.AI.Learner.TableKey)
	log.Info("training started", "games", games, "known_states", len(values))

	for played := 0; played < games; played += batch {
		stats, trainErr := trainer.Train(ctx, min(batch, games-played))

		// save what was learned even when interrupted
		if err = learnerRepo.Save(context.WithoutCancel(ctx), learner.Snapshot()); err != nil {
			return fmt.Errorf("could not save learner table: %w", err)
		}

		log.Info("batch finished",
			"games", stats.Games,
			"wins", stats.Wins,
			"losses", stats.Losses,
			"draws", stats.Draws,
			"exploration", learner.Exploration(),
		)

		if trainErr != nil {
			if errors.Is(trainErr, context.Canceled) {
				log.Info("training interrupted")
				return nil
			}

			return trainErr
		}
	}

	return nil
}
