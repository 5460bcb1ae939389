package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/catalog"
	"github.com/assesskit/assessrec/internal/index"
	"github.com/assesskit/assessrec/internal/logger"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the assessment catalog into the vector index",
	Run: func(cmd *cobra.Command, _ []string) {
		runIndex(cmd)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().BoolP("force", "f", false, "rebuild the index even if it is already populated")
}

func runIndex(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	items, err := catalog.Load(config.Catalog.File)
	if err != nil {
		logger.Fatal("loading the catalog", zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.String("file", config.Catalog.File),
		zap.Int("count", len(items)),
	)

	store, err := index.Open(config.Index.Path)
	if err != nil {
		logger.Fatal("opening the index", zap.Error(err))
	}
	defer store.Close()

	force, _ := cmd.Flags().GetBool("force")

	indexer := index.NewIndexer(store, newEmbedder(config), logger)
	if err := indexer.Index(ctx, items, force); err != nil {
		logger.Fatal("indexing the catalog", zap.Error(err))
	}

	logger.Info("index ready",
		zap.String("path", config.Index.Path),
		zap.Int("assessments_indexed", store.Count()),
	)
}
