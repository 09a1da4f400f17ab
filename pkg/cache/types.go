package cache

// CostKey identifies a cached cost, typically a chromosome fingerprint.
type CostKey uint64

// CacheConfig holds cache configuration
type CacheConfig struct {
	MaxSize int `json:"max_size" yaml:"max_size"` // Maximum number of entries
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MaxSize: 4096,
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	HitRate   float64 `json:"hit_rate"`
	Evictions int64   `json:"evictions"`
}

// CalculateHitRate calculates the hit rate
func (s *CacheStats) CalculateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	} else {
		s.HitRate = 0.0
	}
}
