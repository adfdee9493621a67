package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"socguard/config"
)

var configFlag string

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("socguard.yml"); err == nil {
		return "socguard.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "socguard.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "socguard.yml"
}

func applyDefaults(cfg *config.Config) {
	if cfg.SocGuard.Actor == "" {
		cfg.SocGuard.Actor = "system"
	}

	if cfg.SocGuard.Guardrails.Per5Minutes <= 0 {
		cfg.SocGuard.Guardrails.Per5Minutes = 5
	}
	if cfg.SocGuard.Guardrails.PerHour <= 0 {
		cfg.SocGuard.Guardrails.PerHour = 10
	}
	if cfg.SocGuard.Guardrails.PerDay <= 0 {
		cfg.SocGuard.Guardrails.PerDay = 15
	}
	if cfg.SocGuard.Guardrails.BatchSizeMax <= 0 {
		cfg.SocGuard.Guardrails.BatchSizeMax = 50
	}
	if cfg.SocGuard.Guardrails.HighThreatCountMax <= 0 {
		cfg.SocGuard.Guardrails.HighThreatCountMax = 10
	}
	if cfg.SocGuard.Guardrails.MassExceptionMin <= 0 {
		cfg.SocGuard.Guardrails.MassExceptionMin = 10
	}
	if cfg.SocGuard.Guardrails.ConfirmationPhrase == "" {
		cfg.SocGuard.Guardrails.ConfirmationPhrase = "CONFIRM MASS ISOLATION"
	}
	if cfg.SocGuard.Guardrails.ConfirmationDelay == 0 {
		cfg.SocGuard.Guardrails.ConfirmationDelay = 5 * time.Second
	}

	if cfg.SocGuard.Store.Mode == "" {
		cfg.SocGuard.Store.Mode = "redis"
	}
	if cfg.SocGuard.Store.Redis.Addr == "" {
		cfg.SocGuard.Store.Redis.Addr = "127.0.0.1:6379"
	}

	if cfg.SocGuard.Lock.Mode == "" {
		cfg.SocGuard.Lock.Mode = "file"
	}
	if cfg.SocGuard.Lock.Path == "" {
		cfg.SocGuard.Lock.Path = "socguard.lock"
	}
	if cfg.SocGuard.Lock.Redis.Addr == "" {
		cfg.SocGuard.Lock.Redis.Addr = "127.0.0.1:6379"
	}

	if cfg.SocGuard.Input.Mode == "" {
		cfg.SocGuard.Input.Mode = "redis"
	}
	if cfg.SocGuard.Input.Redis.Addr == "" {
		cfg.SocGuard.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.SocGuard.Input.Redis.Key == "" {
		cfg.SocGuard.Input.Redis.Key = "hunt_results"
	}
	if cfg.SocGuard.Input.Redis.BlockTimeout == 0 {
		cfg.SocGuard.Input.Redis.BlockTimeout = 5 * time.Second
	}

	if cfg.SocGuard.Notify.Mode == "" {
		cfg.SocGuard.Notify.Mode = "log"
	}

	if cfg.SocGuard.Executor.Mode == "" {
		cfg.SocGuard.Executor.Mode = "dryrun"
	}

	if cfg.SocGuard.Logging.Level == "" {
		cfg.SocGuard.Logging.Level = "info"
	}

	if cfg.SocGuard.Metrics.Addr == "" {
		cfg.SocGuard.Metrics.Addr = ":9183"
	}
}

func loadConfig() (*config.Config, error) {
	path := findConfigFile(configFlag)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "socguard",
		Short:         "Isolation governance for automated threat response",
		Long:          "socguard gates automated device isolation behind rate limits,\nconfidence policy, batch-size checks and a mass-isolation arbiter.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to config file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newUnlockCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
