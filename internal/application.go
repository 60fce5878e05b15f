package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/threetoe-backend/internal/bot"
	"github.com/rocketscienceinc/threetoe-backend/internal/config"
	"github.com/rocketscienceinc/threetoe-backend/internal/repository"
	"github.com/rocketscienceinc/threetoe-backend/internal/repository/storage"
	"github.com/rocketscienceinc/threetoe-backend/internal/tictactoe"
	"github.com/rocketscienceinc/threetoe-backend/internal/usecase"
	"github.com/rocketscienceinc/threetoe-backend/transport/rest"
	"github.com/rocketscienceinc/threetoe-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	policyConfig, err := conf.AI.PolicyConfig()
	if err != nil {
		return fmt.Errorf("invalid ai configuration: %w", err)
	}
	policyConfig.RepetitionLimit = conf.Game.RepetitionLimit

	learner, err := bot.NewLearner(conf.AI.LearnerParams(), nil)
	if err != nil {
		return fmt.Errorf("invalid learner configuration: %w", err)
	}

	learnerRepo := repository.NewLearnerRepository(redisStorage, conf.AI.Learner.TableKey)
	if policyConfig.HardSource == bot.SourceLearner {
		values, err := learnerRepo.Load(ctx)
		if err != nil {
			return fmt.Errorf("could not load learner table: %w", err)
		}

		learner.Load(values)
		log.Info("learner table loaded", "states", len(values))
	}

	policy, err := bot.NewPolicy(policyConfig, learner)
	if err != nil {
		return fmt.Errorf("could not create policy: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage, conf.Game.SessionTTL)
	gameController := tictactoe.NewGameController(policy, conf.Game.RepetitionLimit)

	var options []usecase.GameManagerOption
	if policyConfig.HardSource == bot.SourceLearner {
		options = append(options, usecase.WithLearnerPersistence(learner, learnerRepo))
	}

	gameUseCase := usecase.NewGameManager(logger, gameRepo, gameController, options...)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := rest.Start(groupCtx, conf.HTTPPort, rest.NewRouter(logger, gameUseCase)); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := websocket.New(logger, gameUseCase).Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}

		return nil
	})

	// runs until a signal arrives or either server fails
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Application context canceled, shutting down")

		return nil
	})

	return group.Wait()
}
