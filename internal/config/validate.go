package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Analysis.validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := c.Coordinator.validate(); err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	if err := c.Wordbook.validate(); err != nil {
		return fmt.Errorf("wordbook: %w", err)
	}
	if c.RateLimit.SelectionsPerMinute <= 0 {
		return fmt.Errorf("rate_limit: selections_per_minute must be > 0 (got %d)", c.RateLimit.SelectionsPerMinute)
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case DriverPostgres:
		if d.DSN == "" {
			return fmt.Errorf("dsn is required for driver %q", d.Driver)
		}
	case DriverSQLite:
		if d.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for driver %q", d.Driver)
		}
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", d.Driver, DriverPostgres, DriverSQLite)
	}
	return nil
}

func (a *AnalysisConfig) validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL (got %q)", a.BaseURL)
	}
	a.BaseURL = strings.TrimRight(a.BaseURL, "/")

	for _, l := range a.DefaultLayers {
		if l < 2 || l > 4 {
			return fmt.Errorf("default_layers: layer %d cannot be requested", l)
		}
	}

	switch a.PronunciationSource {
	case PronunciationBackend, PronunciationFreeDict:
	default:
		return fmt.Errorf("pronunciation_source must be %s or %s (got %q)",
			PronunciationBackend, PronunciationFreeDict, a.PronunciationSource)
	}
	return nil
}

func (c *CoordinatorConfig) validate() error {
	if c.DebounceWindow < 0 {
		return fmt.Errorf("debounce_window must be >= 0 (got %v)", c.DebounceWindow)
	}
	if c.WeakMaxLength <= 0 {
		return fmt.Errorf("weak_max_length must be > 0 (got %d)", c.WeakMaxLength)
	}
	if c.ContextWindow <= 0 {
		return fmt.Errorf("context_window must be > 0 (got %d)", c.ContextWindow)
	}
	if c.InboxSize <= 0 {
		return fmt.Errorf("inbox_size must be > 0 (got %d)", c.InboxSize)
	}
	return nil
}

func (w *WordbookConfig) validate() error {
	if w.MaxSnapshots <= 0 {
		return fmt.Errorf("max_snapshots must be > 0 (got %d)", w.MaxSnapshots)
	}
	if w.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be > 0 (got %d)", w.HistoryLimit)
	}
	if w.RecentVocabularyLimit < 0 {
		return fmt.Errorf("recent_vocabulary_limit must be >= 0 (got %d)", w.RecentVocabularyLimit)
	}
	if w.SnapshotRetentionDays <= 0 {
		return fmt.Errorf("snapshot_retention_days must be > 0 (got %d)", w.SnapshotRetentionDays)
	}
	return nil
}
