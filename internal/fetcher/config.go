package fetcher

// DefaultMaxConcurrency is used when Config.MaxConcurrency is not positive.
const DefaultMaxConcurrency = 4

type Config struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}
