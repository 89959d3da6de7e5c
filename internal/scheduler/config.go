package scheduler

import (
	"strings"
	"time"
)

// Config controls scheduler intervals and job selection.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	// EnabledJobs narrows which jobs run. Empty means all jobs.
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		JobTimeout:  2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

func (c Config) jobEnabled(jobName string) bool {
	if len(c.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range c.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
