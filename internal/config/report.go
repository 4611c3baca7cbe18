package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// ReportConfig holds configuration for the report command.
type ReportConfig struct {
	AnalysisOut string
	PGDSN       string
	Days        int
	Since       string
	LogLevel    string
}

// LoadReport merges config file, environment variables, and flags into ReportConfig.
func LoadReport(cfgFile string, flags *pflag.FlagSet) (ReportConfig, error) {
	v := newViper()

	v.SetDefault("analysis-out", "./data/analysis_results.jsonl")
	v.SetDefault("days", 7)
	v.SetDefault("log-level", "info")

	if err := readConfig(v, cfgFile, flags); err != nil {
		return ReportConfig{}, err
	}

	cfg := ReportConfig{
		AnalysisOut: v.GetString("analysis-out"),
		PGDSN:       v.GetString("pg-dsn"),
		Days:        v.GetInt("days"),
		Since:       v.GetString("since"),
		LogLevel:    v.GetString("log-level"),
	}
	if cfg.Days <= 0 && cfg.Since == "" {
		return ReportConfig{}, fmt.Errorf("days must be positive")
	}
	return cfg, nil
}

// Window returns the start of the reporting window. An explicit since value
// wins over days.
func (c ReportConfig) Window(now time.Time) (time.Time, error) {
	if strings.TrimSpace(c.Since) != "" {
		return ParseTimestamp(c.Since)
	}
	return now.Add(-time.Duration(c.Days) * 24 * time.Hour), nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(val, 0).UTC(), nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return time.Time{}, err
	}
	return tm.UTC(), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
