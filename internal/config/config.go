// SPDX-License-Identifier: MIT

// Package config loads service configuration with the precedence
// environment > YAML file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qsolv/qsudoku/internal/solver"
)

// SolverConfig carries the default solve options the service applies when a
// request leaves them unset.
type SolverConfig struct {
	Strategy     string `yaml:"strategy"`
	Shots        int    `yaml:"shots"`
	Seed         int64  `yaml:"seed"`
	MaxRounds    int    `yaml:"maxRounds"`
	NumSolutions int    `yaml:"numSolutions"`
	MaxQubits    int    `yaml:"maxQubits"`
}

// Config is the full service configuration.
type Config struct {
	Listen    string        `yaml:"listen"`
	APIToken  string        `yaml:"apiToken"`
	RateLimit int           `yaml:"rateLimit"` // requests per minute per client
	DataDir   string        `yaml:"dataDir"`
	PuzzleDir string        `yaml:"puzzleDir"` // defaults to <dataDir>/puzzles
	StoreDir  string        `yaml:"storeDir"`  // defaults to <dataDir>/jobs
	ArchiveDB string        `yaml:"archiveDB"` // defaults to <dataDir>/estimates.db
	RedisAddr string        `yaml:"redisAddr"` // empty disables the cache
	CacheTTL  time.Duration `yaml:"cacheTTL"`
	LogLevel  string        `yaml:"logLevel"`
	Solver    SolverConfig  `yaml:"solver"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Listen:    ":8080",
		RateLimit: 100,
		DataDir:   "./data",
		CacheTTL:  time.Hour,
		LogLevel:  "info",
		Solver: SolverConfig{
			Strategy:     string(solver.StrategyPairs),
			Shots:        1024,
			MaxRounds:    10,
			NumSolutions: 1,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - operator-provided path
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Listen = ParseString("QSUDOKU_LISTEN", c.Listen)
	c.APIToken = ParseString("QSUDOKU_API_TOKEN", c.APIToken)
	c.RateLimit = ParseInt("QSUDOKU_RATE_LIMIT", c.RateLimit)
	c.DataDir = ParseString("QSUDOKU_DATA_DIR", c.DataDir)
	c.PuzzleDir = ParseString("QSUDOKU_PUZZLE_DIR", c.PuzzleDir)
	c.StoreDir = ParseString("QSUDOKU_STORE_DIR", c.StoreDir)
	c.ArchiveDB = ParseString("QSUDOKU_ARCHIVE_DB", c.ArchiveDB)
	c.RedisAddr = ParseString("QSUDOKU_REDIS_ADDR", c.RedisAddr)
	c.CacheTTL = ParseDuration("QSUDOKU_CACHE_TTL", c.CacheTTL)
	c.LogLevel = ParseString("QSUDOKU_LOG_LEVEL", c.LogLevel)

	c.Solver.Strategy = ParseString("QSUDOKU_SOLVER_STRATEGY", c.Solver.Strategy)
	c.Solver.Shots = ParseInt("QSUDOKU_SOLVER_SHOTS", c.Solver.Shots)
	c.Solver.Seed = ParseInt64("QSUDOKU_SOLVER_SEED", c.Solver.Seed)
	c.Solver.MaxRounds = ParseInt("QSUDOKU_SOLVER_MAX_ROUNDS", c.Solver.MaxRounds)
	c.Solver.NumSolutions = ParseInt("QSUDOKU_SOLVER_NUM_SOLUTIONS", c.Solver.NumSolutions)
	c.Solver.MaxQubits = ParseInt("QSUDOKU_SOLVER_MAX_QUBITS", c.Solver.MaxQubits)
}

func (c *Config) applyDerived() {
	if c.PuzzleDir == "" {
		c.PuzzleDir = filepath.Join(c.DataDir, "puzzles")
	}
	if c.StoreDir == "" {
		c.StoreDir = filepath.Join(c.DataDir, "jobs")
	}
	if c.ArchiveDB == "" {
		c.ArchiveDB = filepath.Join(c.DataDir, "estimates.db")
	}
}

// Validate checks the configuration for values the service cannot start
// with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address is empty")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("config: rate limit %d", c.RateLimit)
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data dir is empty")
	}
	if c.Solver.Shots <= 0 {
		return fmt.Errorf("config: solver shots %d", c.Solver.Shots)
	}
	if _, err := solver.ParseStrategy(c.Solver.Strategy); err != nil {
		return err
	}
	return nil
}

// SolveOptions maps the configured solver defaults onto solve options.
func (c *Config) SolveOptions() solver.Options {
	strategy, _ := solver.ParseStrategy(c.Solver.Strategy)
	return solver.Options{
		Strategy:     strategy,
		Shots:        c.Solver.Shots,
		Seed:         c.Solver.Seed,
		MaxRounds:    c.Solver.MaxRounds,
		NumSolutions: c.Solver.NumSolutions,
		MaxQubits:    c.Solver.MaxQubits,
	}
}
