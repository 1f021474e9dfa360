// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
)

// Options controls which checks validateConfig enforces.
// Offline tools run without a broker and may skip it.
type Options struct {
	ConfigFile    string
	RequireBroker bool
}

// Load reads configs/config.yaml, merges config.<env>.yaml and validates the result
// for the worker-manager.
func Load() (*Config, error) {
	return LoadWithOptions(Options{RequireBroker: true})
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	return LoadWithOptions(Options{ConfigFile: path, RequireBroker: true})
}

func LoadWithOptions(opts Options) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}

		env := os.Getenv("APP_ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig() // env overlay is optional
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg, opts); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from well-known env vars when the yaml left them blank.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.APIs.GenAI.APIKey = val
		} else if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.APIs.GenAI.APIKey = val
		}
	}
	if cfg.APIs.GenAI.BaseURL == "" {
		if val := os.Getenv("GENAI_BASE_URL"); val != "" {
			cfg.APIs.GenAI.BaseURL = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}

	if cfg.Alerts.SNS.TopicARN == "" {
		if val := os.Getenv("ALERTS_SNS_TOPIC_ARN"); val != "" {
			cfg.Alerts.SNS.TopicARN = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "marine-insight-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	g := &cfg.APIs.GenAI
	if g.Provider == "" {
		g.Provider = ProviderHTTP
	}
	if g.Timeout == 0 {
		g.Timeout = 60000
	}
	if g.Retries == 0 {
		g.Retries = 3
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = 1024
	}
	if g.Model == "" && g.Provider == ProviderGemini {
		g.Model = "gemini-2.0-flash"
	}

	r := &cfg.Retrieval
	if r.Backend == "" {
		r.Backend = BackendElasticsearch
	}
	if r.TopK == 0 {
		r.TopK = 3
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = 3600
	}
	if r.Corpora == nil {
		r.Corpora = map[string]string{}
	}
	if _, ok := r.Corpora["fisheries"]; !ok {
		r.Corpora["fisheries"] = "fisheries_biology_collection"
	}
	if _, ok := r.Corpora["overfishing"]; !ok {
		r.Corpora["overfishing"] = "overfishing_policy_collection"
	}

	if cfg.Analysis.BatchConcurrency == 0 {
		cfg.Analysis.BatchConcurrency = 4
	}
	if cfg.Analysis.ExternalTimeout == 0 {
		cfg.Analysis.ExternalTimeout = 30000
	}

	if cfg.Alerts.Region == "" {
		cfg.Alerts.Region = "us-east-1"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
}

// validateConfig rejects configurations the workers cannot run with.
// Every failure is a CONFIGURATION_INVALID error.
func validateConfig(cfg *Config, opts Options) error {
	if opts.RequireBroker && cfg.Camunda.BrokerAddress == "" {
		return errors.NewConfigurationError("camunda.broker_address is required")
	}

	switch cfg.APIs.GenAI.Provider {
	case ProviderHTTP:
		if cfg.APIs.GenAI.BaseURL == "" {
			return errors.NewConfigurationError("apis.genai.base_url is required for the http provider")
		}
	case ProviderGemini:
		if cfg.APIs.GenAI.APIKey == "" {
			return errors.NewConfigurationError("apis.genai.api_key (or GEMINI_API_KEY) is required for the gemini provider")
		}
	default:
		return errors.NewConfigurationError(fmt.Sprintf("apis.genai.provider %q is not supported", cfg.APIs.GenAI.Provider))
	}

	switch cfg.Retrieval.Backend {
	case BackendElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return errors.NewConfigurationError("database.elasticsearch.addresses or url is required for the elasticsearch backend")
		}
	case BackendPostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
			return errors.NewConfigurationError("database.postgres host, database and user are required for the postgres backend")
		}
	default:
		return errors.NewConfigurationError(fmt.Sprintf("retrieval.backend %q is not supported", cfg.Retrieval.Backend))
	}

	if cfg.Retrieval.CacheEnabled && cfg.Database.Redis.Address == "" {
		return errors.NewConfigurationError("database.redis.address is required when retrieval.cache_enabled is set")
	}

	if cfg.Retrieval.TopK < 1 {
		return errors.NewConfigurationError("retrieval.top_k must be positive")
	}
	if cfg.Analysis.BatchConcurrency < 1 {
		return errors.NewConfigurationError("analysis.batch_concurrency must be positive")
	}

	if cfg.Alerts.Enabled && cfg.Alerts.SNS.TopicARN == "" && cfg.Alerts.SES.FromEmail == "" {
		return errors.NewConfigurationError("alerts.sns.topic_arn or alerts.ses.from_email is required when alerts are enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
