package config

import (
	"github.com/fenilsonani/declutter/internal/classify"
	"github.com/fenilsonani/declutter/internal/relocator"
)

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Categories: classify.DefaultCategories(),
		OtherFiles: OtherFilesConfig{
			Relocate: true, // other_files/ is reserved anyway, so fill it
		},
		Collision: CollisionConfig{
			MaxAttempts: relocator.DefaultMaxAttempts,
		},
		DryRun: false,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		History: HistoryConfig{
			Enabled:  true,
			KeepDays: 30,
		},
	}
}
