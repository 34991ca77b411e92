package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/arcova/ragstore"
	"github.com/arcova/ragstore/internal/config"
	logpkg "github.com/arcova/ragstore/internal/logger"
)

// embedConcurrency bounds in-flight embedding calls during ingest.
const embedConcurrency = 8

// embedRPS limits embedding requests per second during ingest.
const embedRPS = 10

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// .env carries API keys referenced by ${VAR} in the config file.
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create client", zap.Error(err))
	}
	defer client.Close()

	switch os.Args[1] {
	case "ingest":
		err = runIngest(ctx, client, logger, os.Args[2:])
	case "ask":
		err = runAsk(ctx, client, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Command failed", zap.Error(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ragstore <command> [flags]

commands:
  ingest    load a delimited FAQ dataset into the store
  ask       answer a question from the stored knowledge base`)
}

func newClient(cfg config.Config, logger *zap.Logger) (*ragstore.Client, error) {
	opts := []ragstore.Option{
		ragstore.WithServiceURL(cfg.Database.ServiceURL),
		ragstore.WithTable(cfg.VectorStore.TableName),
		ragstore.WithDimensions(cfg.VectorStore.Dimensions),
		ragstore.WithPartitionInterval(cfg.VectorStore.PartitionInterval()),
		ragstore.WithEmbedding(cfg.Embedding.APIKey),
		ragstore.WithEmbeddingModel(cfg.Embedding.Model),
		ragstore.WithCompletion(cfg.LLM.Provider, cfg.LLM.APIKey),
		ragstore.WithCompletionModel(cfg.LLM.Model),
		ragstore.WithTemperature(cfg.LLM.Temperature),
		ragstore.WithMaxRetries(cfg.LLM.MaxRetries),
		ragstore.WithLogger(logger),
	}
	if cfg.Embedding.BaseURL != "" {
		opts = append(opts, ragstore.WithEmbeddingBaseURL(cfg.Embedding.BaseURL))
	}
	if cfg.VectorStore.HNSWM > 0 || cfg.VectorStore.HNSWEFConstruct > 0 {
		opts = append(opts, ragstore.WithHNSW(cfg.VectorStore.HNSWM, cfg.VectorStore.HNSWEFConstruct))
	}
	if cfg.LLM.MaxTokens > 0 {
		opts = append(opts, ragstore.WithMaxTokens(cfg.LLM.MaxTokens))
	}
	if len(cfg.Cache.Addrs) > 0 {
		opts = append(opts, ragstore.WithCache(cfg.Cache.Addrs, cfg.Cache.Password))
	}
	return ragstore.New(opts...)
}

// faqRow is one question/answer pair from the dataset.
type faqRow struct {
	question string
	answer   string
	category string
}

func runIngest(ctx context.Context, client *ragstore.Client, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	path := fs.String("data", "data/faq_dataset.csv", "path to the semicolon-delimited FAQ dataset")
	rebuildIndex := fs.Bool("rebuild-index", false, "drop and rebuild the ANN index after loading")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := readFAQ(*path)
	if err != nil {
		return err
	}
	logger.Info("Loaded dataset", zap.String("path", *path), zap.Int("rows", len(rows)))

	if err := client.CreateSchema(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	records, err := embedRows(ctx, client, rows)
	if err != nil {
		return err
	}

	if err := client.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	logger.Info("Upserted dataset", zap.Int("records", len(records)))

	if *rebuildIndex {
		if err := client.DropIndex(ctx); err != nil {
			return fmt.Errorf("drop index: %w", err)
		}
	}
	if err := client.CreateIndex(ctx); err != nil {
		if errors.Is(err, ragstore.ErrIndexExists) {
			logger.Info("ANN index already present")
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	logger.Info("ANN index created")

	return nil
}

// embedRows vectorizes the dataset with bounded concurrency under a
// provider rate limit, preserving row order.
func embedRows(ctx context.Context, client *ragstore.Client, rows []faqRow) ([]ragstore.Record, error) {
	limiter := rate.NewLimiter(rate.Limit(embedRPS), 1)
	records := make([]ragstore.Record, len(rows))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for i, row := range rows {
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}

			content := fmt.Sprintf("Question: %s\nAnswer: %s", row.question, row.answer)
			emb, err := client.Embed(ctx, content)
			if err != nil {
				return fmt.Errorf("embed row %d: %w", i, err)
			}

			metadata := map[string]any{
				"category":   row.category,
				"created_at": time.Now().UTC().Format(time.RFC3339),
			}

			mu.Lock()
			defer mu.Unlock()
			rec, err := client.Stage(metadata, content, emb.Embedding)
			if err != nil {
				return fmt.Errorf("stage row %d: %w", i, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

// readFAQ parses the semicolon-delimited dataset: question;answer;category
// with a header row.
func readFAQ(path string) ([]faqRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = 3

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	rows := make([]faqRow, 0, len(all)-1)
	for _, rec := range all[1:] { // skip header
		rows = append(rows, faqRow{question: rec[0], answer: rec[1], category: rec[2]})
	}
	return rows, nil
}

func runAsk(ctx context.Context, client *ragstore.Client, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	limit := fs.Int("limit", 3, "how many retrieved entries to ground the answer on")
	category := fs.String("category", "", "restrict retrieval to one FAQ category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ragstore ask [flags] \"question\"")
	}
	question := fs.Arg(0)

	q := client.Search().Query(question).Limit(*limit)
	if *category != "" {
		q = q.Where("category", *category)
	}

	answer, err := q.Synthesize(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", answer.Answer)
	fmt.Println("\nThought process:")
	for _, thought := range answer.ThoughtProcess {
		fmt.Printf("- %s\n", thought)
	}
	fmt.Printf("\nEnough context: %v\n", answer.EnoughContext)

	return nil
}
