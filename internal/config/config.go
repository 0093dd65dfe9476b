package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"go-codegen-pipeline/internal/codegen"
	"go-codegen-pipeline/internal/model"
)

// EnvPrefix is prepended to every environment override, e.g. CODEGEN_LOG_LEVEL.
const EnvPrefix = "CODEGEN"

// Config holds all application configuration.
type Config struct {
	Log        LogConfig              `mapstructure:"log"`
	Storage    StorageConfig          `mapstructure:"storage"`
	Render     RenderConfig           `mapstructure:"render"`
	Server     ServerConfig           `mapstructure:"server"`
	Generation model.GenerationConfig `mapstructure:"generation"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

type StorageConfig struct {
	JobsDB    string `mapstructure:"jobs_db" validate:"required"`
	MetricsDB string `mapstructure:"metrics_db" validate:"required"`
}

// RenderConfig lists the linear backends in the order they are tried.
type RenderConfig struct {
	LinearBackends []string `mapstructure:"linear_backends" validate:"min=1,dive,required"`
}

// ServerConfig configures the HTTP server. Sources named in API requests must
// live under SourceDir; URLs are only fetched when AllowRemoteSources is set.
type ServerConfig struct {
	Addr               string        `mapstructure:"addr" validate:"required"`
	OutputDir          string        `mapstructure:"output_dir" validate:"required"`
	ScratchDir         string        `mapstructure:"scratch_dir"`
	SourceDir          string        `mapstructure:"source_dir"`
	AllowRemoteSources bool          `mapstructure:"allow_remote_sources"`
	PollInterval       time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Default returns a configuration that works without any file or env.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  1,
			MaxBackups: 3,
		},
		Storage: StorageConfig{
			JobsDB:    "jobs.db",
			MetricsDB: "metrics.db",
		},
		Render: RenderConfig{
			LinearBackends: append([]string(nil), codegen.DefaultLinearBackends...),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			OutputDir:       "outputs",
			SourceDir:       "sources",
			PollInterval:    100 * time.Millisecond,
			ShutdownTimeout: 10 * time.Second,
		},
		Generation: model.DefaultGenerationConfig(),
	}
}

// Load reads defaults, then the file at path (when given), then CODEGEN_*
// environment variables. With an empty path a codegen.{yaml,toml,json} in the
// working directory is used if present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("codegen")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks struct constraints and the generation defaults.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	gen := c.Generation.WithDefaults()
	if err := codegen.ValidateDimensions(gen); err != nil {
		return fmt.Errorf("invalid config: generation: %w", err)
	}
	if err := codegen.ValidateStyle(gen); err != nil {
		return fmt.Errorf("invalid config: generation: %w", err)
	}
	return nil
}

// setDefaults registers every key so that env overrides apply to it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)

	v.SetDefault("storage.jobs_db", d.Storage.JobsDB)
	v.SetDefault("storage.metrics_db", d.Storage.MetricsDB)

	v.SetDefault("render.linear_backends", d.Render.LinearBackends)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.output_dir", d.Server.OutputDir)
	v.SetDefault("server.scratch_dir", d.Server.ScratchDir)
	v.SetDefault("server.source_dir", d.Server.SourceDir)
	v.SetDefault("server.allow_remote_sources", d.Server.AllowRemoteSources)
	v.SetDefault("server.poll_interval", d.Server.PollInterval)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	g := d.Generation
	v.SetDefault("generation.family", string(g.Family))
	v.SetDefault("generation.mode", string(g.Mode))
	v.SetDefault("generation.prefix", g.Prefix)
	v.SetDefault("generation.suffix", g.Suffix)
	v.SetDefault("generation.foreground", g.Foreground)
	v.SetDefault("generation.background", g.Background)
	v.SetDefault("generation.matrix.width_cm", g.Matrix.WidthCm)
	v.SetDefault("generation.matrix.height_cm", g.Matrix.HeightCm)
	v.SetDefault("generation.matrix.keep_ratio", g.Matrix.KeepRatio)
	v.SetDefault("generation.linear.width_cm", g.Linear.WidthCm)
	v.SetDefault("generation.linear.height_cm", g.Linear.HeightCm)
	v.SetDefault("generation.linear.keep_ratio", g.Linear.KeepRatio)
	v.SetDefault("generation.max_items_per_batch", g.MaxItemsPerBatch)
	v.SetDefault("generation.max_value_length", g.MaxValueLength)
}
