package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/marmos91/linexfer/internal/logger"
)

// Watch reloads path whenever it changes on disk and passes every valid
// result to apply. Invalid edits are logged and ignored. Watching lasts
// for the life of the process.
func Watch(path string, apply func(*Config)) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			logger.Warn("Ignoring invalid configuration change", logger.Path(e.Name), logger.Err(err))
			return
		}
		logger.Info("Configuration reloaded", logger.Path(e.Name))
		apply(cfg)
	})
	v.WatchConfig()
	return nil
}

// ApplyLogging applies the settings that can change at runtime.
func ApplyLogging(cfg *Config) {
	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
}
