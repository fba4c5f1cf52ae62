package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go_todo/ai"
	"go_todo/alarm"
	"go_todo/app"
	"go_todo/config"
	"go_todo/logging"
	"go_todo/metrics"
	"go_todo/notify"
	"go_todo/store"
)

// runtime holds everything a command needs, built from config
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	notifier *notify.Local
	guard    *alarm.Guard
	metrics  *metrics.Metrics
	svc      *app.Service
}

// newRuntime loads config and wires the service. withAlarm enables sound
// playback, which only the long-running TUI needs.
func newRuntime(configFile string, withAlarm bool) (*runtime, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	client := ai.NewClient(ai.Config{
		APIKey:        cfg.Gemini.APIKey,
		Model:         cfg.Gemini.Model,
		APIURL:        cfg.Gemini.APIURL,
		Timeout:       cfg.Gemini.Timeout,
		RatePerMinute: cfg.Gemini.RatePerMinute,
	}, logger.Named("gemini"))
	if cfg.Gemini.APIKey == "" {
		logger.Warn("no Gemini API key configured, due dates default to now")
	}

	r := &runtime{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		notifier: notify.NewLocal(logger.Named("notify")),
		metrics:  metrics.New(),
	}

	var alarmPort app.Alarm
	if withAlarm {
		command := cfg.Alarm.Player
		if command == "" {
			command = alarm.DefaultCommand()
		}
		r.guard = alarm.NewGuard(alarm.NewExecPlayer(command), logger.Named("alarm"))
		alarmPort = r.guard
		if cfg.Alarm.SoundFile == "" {
			logger.Warn("no alarm.sound_file configured, reminders will be silent")
		}
	}

	r.svc = app.New(app.Options{
		Store:     st,
		Extractor: ai.NewExtractor(client, cfg.Gemini.CacheTTL, logger.Named("extractor")),
		Assistant: ai.NewAssistant(client, logger.Named("assistant")),
		Notifier:  r.notifier,
		Alarm:     alarmPort,
		SoundFile: cfg.Alarm.SoundFile,
		Metrics:   r.metrics,
		Logger:    logger.Named("app"),
	})

	logger.Debug("runtime ready",
		zap.String("database", cfg.Database.Path),
		zap.String("model", client.Model()))
	return r, nil
}

// Close stops timers and sound, then closes the database.
func (r *runtime) Close() error {
	r.notifier.Close()
	if r.guard != nil {
		r.svc.StopAlarm(context.Background())
	}
	err := r.store.Close()
	r.logger.Sync()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
