package main

import (
	"fmt"

	"socguard/config"
	"socguard/internal/audit"
	"socguard/internal/executor"
	"socguard/internal/hunt"
	"socguard/internal/lockout"
	"socguard/internal/notify"
)

func buildAuditStore(cfg *config.Config) (audit.Store, error) {
	switch cfg.SocGuard.Store.Mode {
	case "redis":
		return audit.NewRedisStore(audit.RedisConfig{
			Addr:      cfg.SocGuard.Store.Redis.Addr,
			Password:  cfg.SocGuard.Store.Redis.Password,
			DB:        cfg.SocGuard.Store.Redis.DB,
			KeyPrefix: cfg.SocGuard.Store.Redis.KeyPrefix,
		})
	case "memory":
		return audit.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store mode: %s", cfg.SocGuard.Store.Mode)
	}
}

func buildLockStore(cfg *config.Config) (lockout.StateStore, error) {
	switch cfg.SocGuard.Lock.Mode {
	case "redis":
		return lockout.NewRedisStore(lockout.RedisConfig{
			Addr:      cfg.SocGuard.Lock.Redis.Addr,
			Password:  cfg.SocGuard.Lock.Redis.Password,
			DB:        cfg.SocGuard.Lock.Redis.DB,
			KeyPrefix: cfg.SocGuard.Lock.Redis.KeyPrefix,
		})
	case "file":
		return lockout.NewFileStore(cfg.SocGuard.Lock.Path)
	default:
		return nil, fmt.Errorf("unknown lock mode: %s", cfg.SocGuard.Lock.Mode)
	}
}

func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	switch cfg.SocGuard.Notify.Mode {
	case "smtp":
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SocGuard.Notify.SMTP.Host,
			Port:     cfg.SocGuard.Notify.SMTP.Port,
			Username: cfg.SocGuard.Notify.SMTP.Username,
			Password: cfg.SocGuard.Notify.SMTP.Password,
			From:     cfg.SocGuard.Notify.SMTP.From,
			To:       cfg.SocGuard.Notify.SMTP.To,
		})
	case "webhook":
		return notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:     cfg.SocGuard.Notify.Webhook.URL,
			Timeout: cfg.SocGuard.Notify.Webhook.Timeout,
			Headers: cfg.SocGuard.Notify.Webhook.Headers,
		})
	case "log":
		return notify.NewLogNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notify mode: %s", cfg.SocGuard.Notify.Mode)
	}
}

func buildExecutor(cfg *config.Config) (executor.ActionExecutor, error) {
	switch cfg.SocGuard.Executor.Mode {
	case "http":
		return executor.NewHTTPExecutor(executor.HTTPConfig{
			BaseURL: cfg.SocGuard.Executor.BaseURL,
			Token:   cfg.SocGuard.Executor.Token,
			Timeout: cfg.SocGuard.Executor.Timeout,
		})
	case "dryrun":
		return executor.NewDryRun(), nil
	default:
		return nil, fmt.Errorf("unknown executor mode: %s", cfg.SocGuard.Executor.Mode)
	}
}

func buildHuntSource(cfg *config.Config) (hunt.Source, error) {
	switch cfg.SocGuard.Input.Mode {
	case "file":
		if cfg.SocGuard.Input.File == "" {
			return nil, fmt.Errorf("input.file is required for file input mode")
		}
		return hunt.NewFileSource(cfg.SocGuard.Input.File)
	case "redis":
		return hunt.NewRedisSource(hunt.RedisConfig{
			Addr:         cfg.SocGuard.Input.Redis.Addr,
			Password:     cfg.SocGuard.Input.Redis.Password,
			DB:           cfg.SocGuard.Input.Redis.DB,
			Key:          cfg.SocGuard.Input.Redis.Key,
			BlockTimeout: cfg.SocGuard.Input.Redis.BlockTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown input mode: %s", cfg.SocGuard.Input.Mode)
	}
}
