package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// EnvPath overrides the config file path when set.
const EnvPath = "OYL_CONFIG"

const DefaultPath = "config/engine.toml"

type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Physics PhysicsConfig `toml:"physics"`
	Logging LoggingConfig `toml:"logging"`
	Data    DataConfig    `toml:"data"`
}

type EngineConfig struct {
	Name      string  `toml:"name"`
	FrameRate float64 `toml:"frame_rate"` // frames per second of the sandbox loop
	MaxFrames int     `toml:"max_frames"` // 0 = run until interrupted
}

type PhysicsConfig struct {
	Gravity          [3]float32 `toml:"gravity"`
	FixedStep        float32    `toml:"fixed_step"` // seconds
	MaxSubSteps      int        `toml:"max_sub_steps"`
	SolverIterations int        `toml:"solver_iterations"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DataConfig struct {
	YAMLDir    string `toml:"yaml_dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

// Path returns the config path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes data over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if cfg.Physics.FixedStep <= 0 {
		return nil, fmt.Errorf("parse config %s: physics.fixed_step must be positive", name)
	}
	if cfg.Physics.MaxSubSteps <= 0 {
		return nil, fmt.Errorf("parse config %s: physics.max_sub_steps must be positive", name)
	}
	if cfg.Engine.FrameRate <= 0 {
		return nil, fmt.Errorf("parse config %s: engine.frame_rate must be positive", name)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:      "oylsim",
			FrameRate: 60,
		},
		Physics: DefaultPhysics(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Data: DataConfig{
			YAMLDir:    "data/yaml",
			ScriptsDir: "scripts",
		},
	}
}

func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Gravity:          [3]float32{0, -9.81, 0},
		FixedStep:        1.0 / 60.0,
		MaxSubSteps:      10,
		SolverIterations: 10,
	}
}
