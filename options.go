package ragstore

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	serviceURL string

	table             string
	dimensions        int
	partitionInterval time.Duration
	hnswM             int
	hnswEFConstruct   int

	embedder     Embedder
	embedAPIKey  string
	embedBaseURL string
	embedModel   string

	llmProvider    string
	llmAPIKey      string
	llmBaseURL     string
	llmModel       string
	llmTemperature float32
	llmMaxTokens   int
	llmMaxRetries  int

	cacheAddrs    []string
	cachePassword string

	logger *zap.Logger
}

// WithServiceURL sets the Postgres connection string. Required.
func WithServiceURL(url string) Option {
	return func(c *clientConfig) { c.serviceURL = url }
}

// WithTable sets the backing table name (default "embeddings").
func WithTable(name string) Option {
	return func(c *clientConfig) { c.table = name }
}

// WithDimensions sets the embedding dimensionality (default 1536).
func WithDimensions(n int) Option {
	return func(c *clientConfig) { c.dimensions = n }
}

// WithPartitionInterval sets the width of the time partitions (default 7 days).
func WithPartitionInterval(d time.Duration) Option {
	return func(c *clientConfig) { c.partitionInterval = d }
}

// WithHNSW overrides the ANN index build parameters.
func WithHNSW(m, efConstruction int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruction
	}
}

// WithEmbedding configures the OpenAI-compatible embedding provider.
func WithEmbedding(apiKey string) Option {
	return func(c *clientConfig) { c.embedAPIKey = apiKey }
}

// WithEmbeddingModel overrides the embedding model (default text-embedding-3-small).
func WithEmbeddingModel(model string) Option {
	return func(c *clientConfig) { c.embedModel = model }
}

// WithEmbeddingBaseURL points the embedding provider at an
// OpenAI-compatible endpoint.
func WithEmbeddingBaseURL(url string) Option {
	return func(c *clientConfig) { c.embedBaseURL = url }
}

// WithEmbedder supplies a custom embedding provider instead of the
// built-in OpenAI one.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithCompletion configures the structured completion provider.
// Supported providers: "openai", "anthropic".
func WithCompletion(provider, apiKey string) Option {
	return func(c *clientConfig) {
		c.llmProvider = provider
		c.llmAPIKey = apiKey
	}
}

// WithCompletionModel overrides the completion model (default gpt-4o-mini).
func WithCompletionModel(model string) Option {
	return func(c *clientConfig) { c.llmModel = model }
}

// WithCompletionBaseURL points the OpenAI completion provider at a
// compatible endpoint. Ignored for other providers.
func WithCompletionBaseURL(url string) Option {
	return func(c *clientConfig) { c.llmBaseURL = url }
}

// WithTemperature sets the default sampling temperature (default 0).
func WithTemperature(t float32) Option {
	return func(c *clientConfig) { c.llmTemperature = t }
}

// WithMaxTokens sets the default completion token limit.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) { c.llmMaxTokens = n }
}

// WithMaxRetries sets how many times schema-invalid completions are
// retried (default 3). Zero retries means a single attempt.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		// The completion client treats 0 as "unset"; a caller passing 0
		// here wants no retries.
		if n <= 0 {
			n = -1
		}
		c.llmMaxRetries = n
	}
}

// WithCache enables the Redis embedding cache.
func WithCache(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
