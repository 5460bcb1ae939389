package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/catalog"
	"github.com/assesskit/assessrec/internal/crawl"
	"github.com/assesskit/assessrec/internal/logger"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the product catalog and save it as a local json file",
	Run: func(cmd *cobra.Command, _ []string) {
		runCrawl(cmd)
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().IntP("pages", "p", 0, "number of catalog pages to crawl, 0 means the whole catalog")
}

func runCrawl(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	pages, _ := cmd.Flags().GetInt("pages")

	crawler := crawl.New(logger, crawl.WithCatalogURL(config.Catalog.URL))

	items, err := crawler.Run(ctx, pages)
	if err != nil {
		logger.Fatal("crawling the catalog", zap.Error(err))
	}

	if err := catalog.Save(config.Catalog.File, items); err != nil {
		logger.Fatal("saving the catalog", zap.Error(err))
	}

	logger.Info("catalog saved",
		zap.String("file", config.Catalog.File),
		zap.Int("count", len(items)),
	)
}
