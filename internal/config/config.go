package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/bot"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
	AI         AI     `yaml:"ai"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	// RepetitionLimit draws a game once a position occurs this many times, 0 disables it.
	RepetitionLimit int           `yaml:"repetition-limit" env-default:"3"`
	SessionTTL      time.Duration `yaml:"session-ttl" env-default:"24h"`
}

type AI struct {
	WinScore int     `yaml:"win-score" env-required:"true"`
	Medium   Tier    `yaml:"medium"`
	Hard     Hard    `yaml:"hard"`
	Learner  Learner `yaml:"learner"`
}

type Weights struct {
	Win    int `yaml:"win" env-required:"true"`
	Threat int `yaml:"threat" env-required:"true"`
}

type Tier struct {
	Depth   int     `yaml:"depth" env-required:"true"`
	Weights Weights `yaml:"weights"`
}

type Hard struct {
	Source  string  `yaml:"source" env:"AI_HARD_SOURCE" env-default:"search"`
	Depth   int     `yaml:"depth" env-required:"true"`
	Weights Weights `yaml:"weights"`
}

type Learner struct {
	LearningRate     float64 `yaml:"learning-rate" env-default:"0.1"`
	Discount         float64 `yaml:"discount" env-default:"0.9"`
	Exploration      float64 `yaml:"exploration" env-default:"0.2"`
	ExplorationDecay float64 `yaml:"exploration-decay" env-default:"0.995"`
	MinExploration   float64 `yaml:"min-exploration" env-default:"0.01"`
	TableKey         string  `yaml:"table-key" env-default:"learner:values"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads the file, applies env overrides and validates the AI section.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.AI.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ai section: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Validate checks everything the decision engine cannot run without.
func (that *AI) Validate() error {
	if _, err := that.PolicyConfig(); err != nil {
		return err
	}

	if err := that.LearnerParams().Validate(); err != nil {
		return err
	}

	if that.Learner.TableKey == "" {
		return fmt.Errorf("%w: learner table key is empty", apperror.ErrMissingConfiguration)
	}

	return nil
}

// PolicyConfig converts the section into the decision engine's settings.
func (that *AI) PolicyConfig() (bot.PolicyConfig, error) {
	config := bot.PolicyConfig{
		WinScore: that.WinScore,
		Medium: bot.TierConfig{
			Depth:   that.Medium.Depth,
			Weights: bot.Weights(that.Medium.Weights),
		},
		Hard: bot.TierConfig{
			Depth:   that.Hard.Depth,
			Weights: bot.Weights(that.Hard.Weights),
		},
		HardSource: bot.Source(that.Hard.Source),
	}

	if err := config.Validate(); err != nil {
		return bot.PolicyConfig{}, err
	}

	return config, nil
}

func (that *AI) LearnerParams() bot.LearnerParams {
	return bot.LearnerParams{
		LearningRate:     that.Learner.LearningRate,
		Discount:         that.Learner.Discount,
		Exploration:      that.Learner.Exploration,
		ExplorationDecay: that.Learner.ExplorationDecay,
		MinExploration:   that.Learner.MinExploration,
	}
}
