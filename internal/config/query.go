package config

import "time"

const (
	defaultLivePollInterval      = 10 * time.Second
	defaultDetailPollInterval    = 5 * time.Second
	defaultScorecardPollInterval = 30 * time.Second
	defaultRetryBase             = time.Second
	defaultRetryCap              = 10 * time.Second
	defaultGCTime                = 5 * time.Minute
	defaultRetryMax              = 2
)

// QueryConfig controls cache polling cadence and the shared retry policy.
type QueryConfig struct {
	LivePollInterval      time.Duration `env:"LIVE_POLL_INTERVAL" envDefault:"10s"`
	DetailPollInterval    time.Duration `env:"DETAIL_POLL_INTERVAL" envDefault:"5s"`
	ScorecardPollInterval time.Duration `env:"SCORECARD_POLL_INTERVAL" envDefault:"30s"`
	RetryMax              int           `env:"QUERY_RETRY_MAX" envDefault:"2"`
	RetryBase             time.Duration `env:"QUERY_RETRY_BASE" envDefault:"1s"`
	RetryCap              time.Duration `env:"QUERY_RETRY_CAP" envDefault:"10s"`
	GCTime                time.Duration `env:"QUERY_GC_TIME" envDefault:"5m"`
}

func (c QueryConfig) normalize() QueryConfig {
	c.LivePollInterval = positiveOr(c.LivePollInterval, defaultLivePollInterval)
	c.DetailPollInterval = positiveOr(c.DetailPollInterval, defaultDetailPollInterval)
	c.ScorecardPollInterval = positiveOr(c.ScorecardPollInterval, defaultScorecardPollInterval)
	c.RetryBase = positiveOr(c.RetryBase, defaultRetryBase)
	c.RetryCap = positiveOr(c.RetryCap, defaultRetryCap)
	c.GCTime = positiveOr(c.GCTime, defaultGCTime)
	if c.RetryMax < 0 {
		c.RetryMax = defaultRetryMax
	}
	return c
}
