package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/ai"
	"github.com/assesskit/assessrec/internal/ai/gemini"
	"github.com/assesskit/assessrec/internal/ai/groq"
	"github.com/assesskit/assessrec/internal/index"
	"github.com/assesskit/assessrec/internal/logger"
	"github.com/assesskit/assessrec/internal/recommend"
	"github.com/assesskit/assessrec/internal/secrets"
	"github.com/assesskit/assessrec/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation API over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address, overrides server.addr")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the assessrec server", zap.String("version", version))

	store, err := index.Open(config.Index.Path)
	if err != nil {
		logger.Fatal("opening the index", zap.Error(err))
	}
	defer store.Close()

	if store.Count() == 0 {
		logger.Warn("index is empty, run the index command first",
			zap.String("path", config.Index.Path),
		)
	}

	rec, model, err := buildRecommender(ctx, config, store, logger)
	if err != nil {
		logger.Fatal("building the recommender", zap.Error(err))
	}

	srv := server.New(rec, store, server.Config{
		Addr:           config.Server.Addr,
		RequestTimeout: parseDuration(config.Server.RequestTimeout, logger),
		Model:          model,
		Debug:          viper.GetBool("debug"),
	}, logger)

	if err := srv.Run(); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}

// buildRecommender assembles the pipeline from the config. It also returns
// the primary provider model name for the health endpoint.
func buildRecommender(ctx context.Context, config *Config, store *index.Store, logger *zap.Logger) (*recommend.Recommender, string, error) {
	embedder := newEmbedder(config)
	idx := index.New(store, embedder)

	providers, model, err := buildProviders(ctx, config, logger)
	if err != nil {
		return nil, "", err
	}

	chain, err := ai.NewChain(providers, parseDuration(config.AI.CallTimeout, logger), logger)
	if err != nil {
		return nil, "", err
	}
	logger.Info("provider chain ready", zap.Strings("providers", chain.Names()))

	rec := recommend.New(
		recommend.NewResolver(logger),
		recommend.NewRetriever(idx, logger),
		chain,
		logger,
	)
	return rec, model, nil
}

// buildProviders resolves API keys and keeps the configured providers in
// fallback order: gemini first, groq second. At least one must be usable.
func buildProviders(ctx context.Context, config *Config, logger *zap.Logger) ([]ai.Provider, string, error) {
	var providers []ai.Provider
	var model string

	geminiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  config.AI.Gemini.APIKeyFile,
		Value: config.AI.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Warn("gemini provider disabled", zap.Error(err))
	} else {
		client, err := gemini.New(ctx, geminiKey, config.AI.Gemini.Model)
		if err != nil {
			return nil, "", err
		}
		providers = append(providers, client)
		model = client.Model()
	}

	groqKey, err := secrets.Load(secrets.Source{
		Name:  "groq api key",
		File:  config.AI.Groq.APIKeyFile,
		Value: config.AI.Groq.APIKey,
		Env:   "GROQ_API_KEY",
	})
	if err != nil {
		logger.Warn("groq provider disabled", zap.Error(err))
	} else {
		var opts []groq.Option
		if config.AI.Groq.Model != "" {
			opts = append(opts, groq.WithModel(config.AI.Groq.Model))
		}
		client, err := groq.New(groqKey, opts...)
		if err != nil {
			return nil, "", err
		}
		providers = append(providers, client)
		if model == "" {
			model = client.Model()
		}
	}

	return providers, model, nil
}

func newEmbedder(config *Config) *index.EmbedClient {
	var opts []index.EmbedOption
	if config.Index.Embedding.BaseURL != "" {
		opts = append(opts, index.WithEmbedBaseURL(config.Index.Embedding.BaseURL))
	}
	if config.Index.Embedding.Model != "" {
		opts = append(opts, index.WithEmbedModel(config.Index.Embedding.Model))
	}
	return index.NewEmbedClient(opts...)
}

func parseDuration(s string, logger *zap.Logger) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Warn("invalid duration in config, using default", zap.String("value", s))
		return 0
	}
	return d
}
