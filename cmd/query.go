package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/catalog"
	"github.com/assesskit/assessrec/internal/index"
	"github.com/assesskit/assessrec/internal/logger"
)

const (
	PromptDumpToFile = "Dump recommendations to file"
	PromptNewQuery   = "New query"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptDumpToFile, PromptNewQuery, PromptExit},
}

var queryCmd = &cobra.Command{
	Use:   "query [job description or url]",
	Short: "Run a one-off recommendation from the command line",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runQuery(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().BoolP("auto", "y", false, "print the recommendations and exit without the action menu")
	queryCmd.Flags().IntP("max-results", "m", 0, "maximum recommendations to return, capped at 10")
}

func runQuery(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := index.Open(config.Index.Path)
	if err != nil {
		logger.Fatal("opening the index", zap.Error(err))
	}
	defer store.Close()

	rec, _, err := buildRecommender(ctx, config, store, logger)
	if err != nil {
		logger.Fatal("building the recommender", zap.Error(err))
	}

	auto, _ := cmd.Flags().GetBool("auto")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	query := strings.Join(args, " ")
	for {
		results, err := rec.Recommend(ctx, query, maxResults)
		if err != nil {
			logger.Fatal("recommendation failed", zap.Error(err))
		}

		printResults(results)

		if auto {
			return
		}

		query, err = interact(results, logger)
		if errors.Is(err, errExit) {
			return
		}
		if err != nil {
			logger.Fatal("action menu failed", zap.Error(err))
		}
	}
}

// interact runs the action menu until the user exits or enters a new query.
func interact(results []catalog.Assessment, logger *zap.Logger) (string, error) {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return "", err
		}

		switch action {
		case PromptDumpToFile:
			path, err := catalog.DumpToTmpFile(results)
			if err != nil {
				return "", err
			}
			logger.Info("recommendations dumped", zap.String("file", path))

		case PromptNewQuery:
			input := promptui.Prompt{Label: "Job description or url"}
			query, err := input.Run()
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(query) != "" {
				return query, nil
			}

		case PromptExit:
			return "", errExit
		}
	}
}

func printResults(results []catalog.Assessment) {
	if len(results) == 0 {
		fmt.Println("no recommendations found")
		return
	}

	pretty, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(pretty))
}
