package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "alumni-matcher"

	defaultMongoURI = "mongodb://127.0.0.1:27017/AlumniConnect"
)

type Config struct {
	Store       *StoreConfig       `mapstructure:"store"`
	Recommend   *RecommendConfig   `mapstructure:"recommend"`
	Departments *DepartmentsConfig `mapstructure:"departments"`
	AI          *AIConfig          `mapstructure:"ai"`
}

type StoreConfig struct {
	Kind   string        `mapstructure:"kind"`
	Mongo  *MongoConfig  `mapstructure:"mongo"`
	SQLite *SQLiteConfig `mapstructure:"sqlite"`
	JSON   *JSONConfig   `mapstructure:"json"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	URIFile    string `mapstructure:"uri-file"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type JSONConfig struct {
	Path string `mapstructure:"path"`
}

type RecommendConfig struct {
	// Threshold and TopK stay raw so invalid values can fall back to the
	// defaults with a warning instead of failing the decode.
	Threshold        string   `mapstructure:"threshold"`
	TopK             string   `mapstructure:"top-k"`
	Details          bool     `mapstructure:"details"`
	Exclude          []string `mapstructure:"exclude"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
	DisableFilters   []string `mapstructure:"disable-filters"`
}

type DepartmentsConfig struct {
	SynonymsFile string `mapstructure:"synonyms-file"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Tone     string        `mapstructure:"tone"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "alumni-matcher ranks alumni for a student by profile similarity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"store.mongo.uri":           "MONGO_URI",
		"store.mongo.database":      "MONGO_DB_NAME",
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"store.sqlite.path":         "ALUMNI_MATCHER_SQLITE_PATH",
		"recommend.threshold":       "ALUMNI_MATCHER_THRESHOLD",
		"recommend.top-k":           "ALUMNI_MATCHER_TOP_K",
		"store.kind":                "ALUMNI_MATCHER_STORE",
		"departments.synonyms-file": "ALUMNI_MATCHER_SYNONYMS_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("store.kind", "mongo")
	viper.SetDefault("store.mongo.uri", defaultMongoURI)
	viper.SetDefault("store.mongo.collection", "users")
	viper.SetDefault("store.sqlite.path", app+".db")
	viper.SetDefault("ai.provider", "gemini")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is alumni-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A missing .env is fine; variables may come from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional unless it was asked for explicitly.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
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

	if config == nil {
		config = &Config{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{}
	}
	if config.Store.Mongo == nil {
		config.Store.Mongo = &MongoConfig{}
	}
	if config.Store.SQLite == nil {
		config.Store.SQLite = &SQLiteConfig{}
	}
	if config.Store.JSON == nil {
		config.Store.JSON = &JSONConfig{}
	}
	if config.Recommend == nil {
		config.Recommend = &RecommendConfig{}
	}
	if config.Departments == nil {
		config.Departments = &DepartmentsConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
