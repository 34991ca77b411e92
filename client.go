package ragstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbpostgres "github.com/arcova/ragstore/internal/db/postgres"
	dbredis "github.com/arcova/ragstore/internal/db/redis"
	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/metrics"
	"github.com/arcova/ragstore/internal/repository/embcache"
	recordrepo "github.com/arcova/ragstore/internal/repository/record"
	transportanthropic "github.com/arcova/ragstore/internal/transport/anthropic"
	transportopenai "github.com/arcova/ragstore/internal/transport/openai"
	completionuc "github.com/arcova/ragstore/internal/usecase/completion"
	recordsuc "github.com/arcova/ragstore/internal/usecase/records"
	searchuc "github.com/arcova/ragstore/internal/usecase/search"
	synthesisuc "github.com/arcova/ragstore/internal/usecase/synthesis"
)

const defaultReadinessTimeout = 10 * time.Second

// defaultAnswerContextSize is how many hits Answer feeds to synthesis.
const defaultAnswerContextSize = 3

// Client is the ragstore SDK entry point.
type Client struct {
	store *dbpostgres.Store
	cache *dbredis.Store

	recordsSvc *recordsuc.Service
	searchSvc  *searchuc.Service
	synthSvc   *synthesisuc.Service
	embedder   domain.Embedder
}

// New creates a ragstore Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		table:             "embeddings",
		dimensions:        1536,
		partitionInterval: 7 * 24 * time.Hour,
		embedModel:        "text-embedding-3-small",
		llmProvider:       "openai",
		llmModel:          "gpt-4o-mini",
		llmMaxRetries:     completionuc.DefaultMaxRetries,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.serviceURL == "" {
		return nil, errors.New("ragstore: database service URL required (use WithServiceURL)")
	}

	provider, err := createProvider(cfg)
	if err != nil {
		return nil, err
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCompletionMetrics()

	store, err := dbpostgres.NewStore(dbpostgres.Config{
		ServiceURL: cfg.serviceURL,
		Logger:     cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("ragstore: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("ragstore: database not ready: %w", err)
	}

	return wireClient(store, provider, cfg)
}

func createProvider(cfg *clientConfig) (domain.CompletionProvider, error) {
	switch cfg.llmProvider {
	case "openai":
		return transportopenai.NewCompleter(&transportopenai.CompleterConfig{
			APIKey:  cfg.llmAPIKey,
			BaseURL: cfg.llmBaseURL,
			Logger:  cfg.logger,
		}), nil
	case "anthropic":
		return transportanthropic.NewCompleter(&transportanthropic.CompleterConfig{
			APIKey: cfg.llmAPIKey,
			Logger: cfg.logger,
		}), nil
	default:
		return nil, fmt.Errorf("ragstore: %w: %q", domain.ErrUnsupportedProvider, cfg.llmProvider)
	}
}

func wireClient(store *dbpostgres.Store, provider domain.CompletionProvider, cfg *clientConfig) (*Client, error) {
	var domEmb domain.Embedder
	switch {
	case cfg.embedder != nil:
		domEmb = &embedderAdapter{inner: cfg.embedder}
	case cfg.embedAPIKey != "":
		domEmb = transportopenai.NewEmbedder(&transportopenai.EmbedderConfig{
			APIKey:     cfg.embedAPIKey,
			BaseURL:    cfg.embedBaseURL,
			Model:      cfg.embedModel,
			Dimensions: cfg.dimensions,
			Logger:     cfg.logger,
		})
	default:
		domEmb = &noopEmbedder{}
	}

	var cache *dbredis.Store
	if len(cfg.cacheAddrs) > 0 {
		kv, err := dbredis.NewStore(dbredis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("ragstore: create cache store: %w", err)
		}
		cache = kv
		domEmb = embcache.New(domEmb, kv, metrics.EmbeddingCacheTotal, cfg.logger)
	}

	llm := completionuc.New(provider, completionuc.Params{
		Model:       cfg.llmModel,
		Temperature: cfg.llmTemperature,
		MaxTokens:   cfg.llmMaxTokens,
		MaxRetries:  cfg.llmMaxRetries,
	}, cfg.logger)

	repo := recordrepo.New(store, cfg.table, cfg.partitionInterval)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		repo = repo.WithHNSW(recordrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}

	return &Client{
		store:      store,
		cache:      cache,
		recordsSvc: recordsuc.New(repo, cfg.dimensions, cfg.logger),
		searchSvc:  searchuc.New(repo, domEmb, cfg.logger),
		synthSvc:   synthesisuc.New(llm, cfg.logger),
		embedder:   domEmb,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.cache != nil {
		c.cache.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// CreateSchema creates the partitioned backing table if it does not exist.
func (c *Client) CreateSchema(ctx context.Context) error {
	return c.recordsSvc.CreateSchema(ctx)
}

// CreateIndex builds the ANN index over stored embeddings. Fails with
// ErrIndexExists when one is already present.
func (c *Client) CreateIndex(ctx context.Context) error {
	return c.recordsSvc.CreateIndex(ctx)
}

// DropIndex removes the ANN index. Dropping a missing index is a no-op, and
// search keeps working without the index.
func (c *Client) DropIndex(ctx context.Context) error {
	return c.recordsSvc.DropIndex(ctx)
}

// Embed vectorizes text with the configured embedding provider.
func (c *Client) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	r, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	return EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// Stage validates the inputs into a Record with a freshly generated
// time-ordered id. Nothing is written until Upsert.
func (c *Client) Stage(metadata map[string]any, content string, embedding []float32) (Record, error) {
	rec, err := c.recordsSvc.Stage(metadata, content, embedding)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:        rec.ID(),
		Metadata:  rec.Metadata(),
		Content:   rec.Content(),
		Embedding: rec.Embedding(),
	}, nil
}

// Upsert inserts or replaces records by id, all-or-nothing.
func (c *Client) Upsert(ctx context.Context, records []Record) error {
	recs := make([]domain.Record, len(records))
	for i, r := range records {
		recs[i] = domain.Reconstruct(r.ID, r.Metadata, r.Content, r.Embedding)
	}
	return c.recordsSvc.Upsert(ctx, recs)
}

// Delete removes records by exactly one selector and returns the count.
func (c *Client) Delete(ctx context.Context, sel DeleteSelector) (int64, error) {
	return c.recordsSvc.Delete(ctx, recordsuc.DeleteSelector{
		IDs:      sel.IDs,
		Metadata: sel.Metadata,
		All:      sel.All,
	})
}

// Search starts a fluent similarity-search query.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c}
}

// Answer retrieves the closest records for the question and synthesizes a
// grounded answer from them.
func (c *Client) Answer(ctx context.Context, question string) (Answer, error) {
	return c.Search().Query(question).Limit(defaultAnswerContextSize).Synthesize(ctx)
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"ragstore: embedder not configured (use WithEmbedding or WithEmbedder)",
	)
}
