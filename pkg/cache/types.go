package cache

import "github.com/snow-ghost/covindicator/core"

// Key identifies one value: an indicator kind evaluated on one execution.
type Key struct {
	Kind        core.IndicatorKind
	ExecutionID string
}

// Config holds cache configuration
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	MaxSize int  `mapstructure:"size"` // Maximum number of entries
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() Config {
	return Config{Enabled: true, MaxSize: 4096}
}

// Stats represents cache statistics
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	HitRate   float64 `json:"hit_rate"`
	Evictions int64   `json:"evictions"`
}

// CalculateHitRate calculates the hit rate
func (s *Stats) CalculateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	} else {
		s.HitRate = 0.0
	}
}
