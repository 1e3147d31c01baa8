package domain

import "time"

// KeyPrefix namespaces every key written to the history store.
const KeyPrefix = "indexwatch:"

// JobIDField is the index field that carries the backup job id.
const JobIDField = "JobId"

// PollConfig holds convergence polling settings.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollConfig returns the settings used to wait for a job to be indexed:
// one sample every 30 seconds, at most 10 re-samples.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    30 * time.Second,
		MaxAttempts: 10,
	}
}

// DefaultPlaybackConfig returns the settings used to wait for every item of a job:
// one sample per minute, at most 10 attempts.
func DefaultPlaybackConfig() PollConfig {
	return PollConfig{
		Interval:    time.Minute,
		MaxAttempts: 10,
	}
}
