package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "assessrec"
)

type Config struct {
	Server  *ServerConfig  `mapstructure:"server"`
	Catalog *CatalogConfig `mapstructure:"catalog"`
	Index   *IndexConfig   `mapstructure:"index"`
	AI      *AIConfig      `mapstructure:"ai"`
}

type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	RequestTimeout string `mapstructure:"request-timeout"`
}

type CatalogConfig struct {
	File string `mapstructure:"file"`
	URL  string `mapstructure:"url"`
}

type IndexConfig struct {
	Path      string           `mapstructure:"path"`
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
}

type EmbeddingConfig struct {
	BaseURL string `mapstructure:"base-url"`
	Model   string `mapstructure:"model"`
}

type AIConfig struct {
	CallTimeout string        `mapstructure:"call-timeout"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
	Groq        *GroqConfig   `mapstructure:"groq"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type GroqConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "assessrec recommends assessments for a job description using semantic retrieval and LLM reranking",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.groq.api-key-file", "GROQ_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GROQ_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is assessrec.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("server.request-timeout", "120s")
	viper.SetDefault("catalog.file", "data/assessments.json")
	viper.SetDefault("index.path", "data/index.db")
	viper.SetDefault("ai.call-timeout", "60s")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The config file is optional since every key has a default, but an
	// explicitly named file must parse.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Catalog == nil {
		config.Catalog = &CatalogConfig{}
	}
	if config.Index == nil {
		config.Index = &IndexConfig{}
	}
	if config.Index.Embedding == nil {
		config.Index.Embedding = &EmbeddingConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.Groq == nil {
		config.AI.Groq = &GroqConfig{}
	}

	return config, nil
}
