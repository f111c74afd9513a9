// Command docqa runs the agentic document QA service: an HTTP server, a
// one-shot question CLI and a file ingester over the same engine.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kataras/golog"
	"github.com/spf13/cobra"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/config"
	"github.com/docqa-ai/docqa/ingest"
	"github.com/docqa-ai/docqa/llm"
	"github.com/docqa-ai/docqa/log"
	"github.com/docqa-ai/docqa/pipeline"
	"github.com/docqa-ai/docqa/server"
	"github.com/docqa-ai/docqa/store"
	pgstore "github.com/docqa-ai/docqa/store/postgres"
	redisstore "github.com/docqa-ai/docqa/store/redis"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "docqa",
		Short:         "Agentic document question answering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(newServeCmd(), newAskCmd(), newIngestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.store.Close()

			if app.cfg.Ingest.WatchDir != "" {
				watcher := ingest.NewWatcher(app.ingestor)
				go func() {
					if err := watcher.Watch(cmd.Context(), app.cfg.Ingest.WatchDir); err != nil && cmd.Context().Err() == nil {
						log.Error("document watcher stopped: %v", err)
					}
				}()
			}

			srv := server.New(server.Options{
				Addr:     app.cfg.Server.Host + ":" + app.cfg.Server.Port,
				Answerer: app.pipeline,
				Ingester: app.ingestor,
				Store:    app.store,
			})
			return srv.Run()
		},
	}
}

func newAskCmd() *cobra.Command {
	var documentFilter string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question against the ingested corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.store.Close()

			result, err := app.pipeline.AnswerFiltered(cmd.Context(), args[0], documentFilter)
			if err != nil {
				return err
			}

			fmt.Println(result.Answer)
			if len(result.SubQuestions) > 0 {
				fmt.Println("\nSub-questions:")
				for i, sq := range result.SubQuestions {
					fmt.Printf("  %d. %s\n", i+1, sq.Text)
				}
			}
			if len(result.Sources) > 0 {
				fmt.Println("\nSources:")
				for i, src := range result.Sources {
					fmt.Printf("  [%d] %s p.%d (%.3f)\n", i+1, src.SourceDocument, src.PageNumber, src.SimilarityScore)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&documentFilter, "document", "d", "", "restrict retrieval to one source document")
	return cmd
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest text files into the evidence store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.store.Close()

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				count, err := app.ingestor.Ingest(cmd.Context(), filepath.Base(path), string(data))
				if err != nil {
					return fmt.Errorf("failed to ingest %s: %w", path, err)
				}
				fmt.Printf("ingested %s: %d chunks\n", path, count)
			}
			return nil
		},
	}
}

// app bundles the wired components behind the CLI commands.
type app struct {
	cfg      config.Config
	store    docqa.EvidenceStore
	pipeline *pipeline.Pipeline
	ingestor *ingest.Ingestor
}

func buildApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	applyLogLevel(cfg.LogLevel)

	reasoner, err := llm.NewReasoner(llm.ClientConfig{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewEmbedder(llm.ClientConfig{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})
	if err != nil {
		return nil, err
	}

	evidenceStore, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(reasoner, embedder, evidenceStore, pipeline.Options{
		TopK:            cfg.Pipeline.TopK,
		MinScore:        cfg.Pipeline.MinScore,
		MaxEvidence:     cfg.Pipeline.MaxEvidence,
		MaxContextChars: cfg.Pipeline.MaxContextChars,
		DedupThreshold:  cfg.Pipeline.DedupThreshold,
		Temperature:     cfg.LLM.Temperature,
		MaxSubQuestions: cfg.Pipeline.MaxSubQuestions,
		Timeout:         cfg.Timeout(),
	})

	chunker := ingest.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	ingestor := ingest.NewIngestor(chunker, embedder, evidenceStore)

	return &app{
		cfg:      cfg,
		store:    evidenceStore,
		pipeline: p,
		ingestor: ingestor,
	}, nil
}

func buildStore(cfg config.Config) (docqa.EvidenceStore, error) {
	switch cfg.Store.Type {
	case "memory", "":
		return store.NewMemory(), nil
	case "redis":
		return redisstore.New(redisstore.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		}), nil
	case "postgres":
		ctx := context.Background()
		s, err := pgstore.New(ctx, pgstore.Options{
			ConnString: cfg.Store.PostgresConnString,
			TableName:  cfg.Store.PostgresTable,
		})
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Store.Type)
	}
}

// applyLogLevel installs a golog-backed logger at the configured level for
// the service's console output.
func applyLogLevel(level string) {
	logger := log.NewGologLogger(golog.Default)
	switch level {
	case "debug":
		logger.SetLevel(log.LevelDebug)
	case "info", "":
		logger.SetLevel(log.LevelInfo)
	case "warn":
		logger.SetLevel(log.LevelWarn)
	case "error":
		logger.SetLevel(log.LevelError)
	case "none":
		logger.SetLevel(log.LevelNone)
	}
	log.SetDefault(logger)
}
