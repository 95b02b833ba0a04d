package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ExportConfig configures a feature-to-table export.
type ExportConfig struct {
	Table          string `yaml:"table" mapstructure:"table"`
	Input          string `yaml:"input" mapstructure:"input"`
	Output         string `yaml:"output" mapstructure:"output"` // empty = stdout
	Derivation     string `yaml:"derivation" mapstructure:"derivation"`
	ColumnsFile    string `yaml:"columns_file" mapstructure:"columns_file"`
	GeometryColumn string `yaml:"geometry_column" mapstructure:"geometry_column"`
	DBFEncoding    string `yaml:"dbf_encoding" mapstructure:"dbf_encoding"`
	ProgressEvery  int    `yaml:"progress_every" mapstructure:"progress_every"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOCOPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("export.table", "florida_zika")
	v.SetDefault("export.input", "")
	v.SetDefault("export.output", "")
	v.SetDefault("export.derivation", "zika_density")
	v.SetDefault("export.columns_file", "")
	v.SetDefault("export.geometry_column", "")
	v.SetDefault("export.dbf_encoding", "utf-8")
	v.SetDefault("export.progress_every", 10000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Every problem is reported,
// not just the first.
func (c *Config) Validate(command string) error {
	var problems []string

	switch c.Log.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}

	if command == "export" {
		if strings.TrimSpace(c.Export.Table) == "" {
			problems = append(problems, "export.table is required")
		}
		if strings.TrimSpace(c.Export.Input) == "" {
			problems = append(problems, "export.input is required")
		}
		if strings.TrimSpace(c.Export.Derivation) == "" {
			problems = append(problems, "export.derivation is required")
		}
		if c.Export.ProgressEvery < 0 {
			problems = append(problems, "export.progress_every must be >= 0")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger installs the global zap logger. Logs always go to stderr so
// they never mix with a script written to stdout.
func InitLogger(cfg LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrapf(err, "config: log level %q", cfg.Level)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger.Named("geocopy"))
	return nil
}
