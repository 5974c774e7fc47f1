// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem of the search engine (paths, Postgres, Kafka, Redis,
// scoring constants, server ports, logging, tracing, metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Redis        RedisConfig        `yaml:"redis"`
	Paths        PathsConfig        `yaml:"paths"`
	Indexing     IndexingConfig     `yaml:"indexing"`
	Query        QueryConfig        `yaml:"query"`
	Autocomplete AutocompleteConfig `yaml:"autocomplete"`
	Gateway      GatewayConfig      `yaml:"gateway"`
	Logging      LoggingConfig      `yaml:"logging"`
	Tracing      TracingConfig      `yaml:"tracing"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// ServerConfig holds HTTP/RPC server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RPCPort         int           `yaml:"rpcPort"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters, used by
// internal/docstore for document authority scores and metadata.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings for the ingestion queue.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentIngest  string `yaml:"documentIngest"`
	IndexComplete   string `yaml:"indexComplete"`
	CacheInvalidate string `yaml:"cacheInvalidate"`
	AnalyticsEvents string `yaml:"analyticsEvents"`
}

// RedisConfig holds Redis connection and caching parameters for the query cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// PathsConfig mirrors the on-disk layout from spec.md §6: data_dir,
// indexes_dir, and the filenames of every index artifact beneath it.
type PathsConfig struct {
	DataDir             string `yaml:"data_dir"`
	IndexesDir          string `yaml:"indexes_dir"`
	JSONData            string `yaml:"json_data"`
	LexiconFile         string `yaml:"lexicon_file"`
	LexiconBinaryFile   string `yaml:"lexicon_binary_file"`
	ForwardIndexFile    string `yaml:"forward_index_file"`
	InvertedIndexFile   string `yaml:"inverted_index_file"`
	BarrelsDir          string `yaml:"barrels_dir"`
	BarrelsBinaryDir    string `yaml:"barrels_binary_dir"`
	BarrelLookup        string `yaml:"barrel_lookup"`
	EmbeddingsDir       string `yaml:"embeddings_dir"`
	EmbeddingsBinFile   string `yaml:"embeddings_bin_file"`
	VocabFile           string `yaml:"vocab_file"`
	AutocompleteFile    string `yaml:"autocomplete_file"`
	NgramAutocomplete   string `yaml:"ngram_autocomplete_file"`
	DocScoresFile       string `yaml:"doc_scores_file"`
	DocumentMetadata    string `yaml:"document_metadata_file"`
	DeltaBarrelBaseName string `yaml:"delta_barrel_base_name"`
}

// IndexingConfig controls the offline build pipeline and the incremental
// indexer's behavior.
type IndexingConfig struct {
	MaxBodyTerms       int           `yaml:"maxBodyTerms"`
	HotDFThreshold     int           `yaml:"hotDfThreshold"`
	WarmDFThreshold    int           `yaml:"warmDfThreshold"`
	WarmBarrelCount    int           `yaml:"warmBarrelCount"`
	ColdBarrelCount    int           `yaml:"coldBarrelCount"`
	IncrementalTimeout time.Duration `yaml:"incrementalTimeout"`
}

// QueryConfig controls query execution limits, scoring constants, and
// semantic-expansion behavior.
type QueryConfig struct {
	TopK                 int           `yaml:"topK"`
	BM25K1               float64       `yaml:"bm25K1"`
	BM25B                float64       `yaml:"bm25B"`
	SemanticThreshold    float64       `yaml:"semanticThreshold"`
	ExpansionWeight      float64       `yaml:"expansionWeight"`
	TopSimilarWords      int           `yaml:"topSimilarWords"`
	WeightBM25           float64       `yaml:"weightBm25"`
	WeightSemantic       float64       `yaml:"weightSemantic"`
	WeightAuthority      float64       `yaml:"weightAuthority"`
	DefaultDeadline      time.Duration `yaml:"defaultDeadline"`
	MaxConcurrentQueries int           `yaml:"maxConcurrentQueries"`
}

// AutocompleteConfig controls prefix bucket sizes.
type AutocompleteConfig struct {
	MaxSuggestions  int `yaml:"maxSuggestions"`
	TwoCharBucket   int `yaml:"twoCharBucket"`
	ThreeCharBucket int `yaml:"threeCharBucket"`
	BigramBucket    int `yaml:"bigramBucket"`
	TrigramBucket   int `yaml:"trigramBucket"` // not read: bigrams and trigrams share BigramBucket's cap
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls the internal span tracer's sampling.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sampleRate"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// GatewayConfig holds the API gateway port and upstream service addresses.
type GatewayConfig struct {
	Port          int    `yaml:"port"`
	IngestionAddr string `yaml:"ingestionAddr"`
	SearcherAddr  string `yaml:"searcherAddr"`
}

// Load reads a YAML config file (if provided) and applies environment
// variable overrides. It returns a Config populated with sensible defaults
// for any missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces the configuration errors spec.md §7 calls fatal at
// startup: missing required paths.
func validate(cfg *Config) error {
	if cfg.Paths.DataDir == "" {
		return fmt.Errorf("config: paths.data_dir is required")
	}
	if cfg.Paths.IndexesDir == "" {
		return fmt.Errorf("config: paths.indexes_dir is required")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			RPCPort:         9000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "scisearch",
			User:            "scisearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "scisearch-ingestion",
			Topics: KafkaTopics{
				DocumentIngest:  "document-ingest",
				IndexComplete:   "index.complete",
				CacheInvalidate: "cache-invalidate",
				AnalyticsEvents: "analytics-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Paths: PathsConfig{
			DataDir:             "data",
			IndexesDir:          "indexes",
			JSONData:            "pmc-json",
			LexiconFile:         "lexicon.json",
			LexiconBinaryFile:   "embeddings/lexicon.bin",
			ForwardIndexFile:    "forward_index.json",
			InvertedIndexFile:   "inverted_index.json",
			BarrelsDir:          "barrels",
			BarrelsBinaryDir:    "barrels_binary",
			BarrelLookup:        "barrel_lookup.json",
			EmbeddingsDir:       "embeddings",
			EmbeddingsBinFile:   "embeddings/embeddings.bin",
			VocabFile:           "embeddings/vocab.json",
			AutocompleteFile:    "embeddings/autocomplete.json",
			NgramAutocomplete:   "ngram_autocomplete.json",
			DocScoresFile:       "embeddings/doc_scores.json",
			DocumentMetadata:    "document_metadata.json",
			DeltaBarrelBaseName: "barrel_new_docs",
		},
		Indexing: IndexingConfig{
			MaxBodyTerms:       5000,
			HotDFThreshold:     10000,
			WarmDFThreshold:    1000,
			WarmBarrelCount:    6,
			ColdBarrelCount:    3,
			IncrementalTimeout: 60 * time.Second,
		},
		Query: QueryConfig{
			TopK:                 20,
			BM25K1:               1.5,
			BM25B:                0.75,
			SemanticThreshold:    0.5,
			ExpansionWeight:      0.5,
			TopSimilarWords:      3,
			WeightBM25:           0.5,
			WeightSemantic:       0.3,
			WeightAuthority:      0.2,
			DefaultDeadline:      2 * time.Second,
			MaxConcurrentQueries: 64,
		},
		Autocomplete: AutocompleteConfig{
			MaxSuggestions:  5,
			TwoCharBucket:   50,
			ThreeCharBucket: 50,
			BigramBucket:    100,
			TrigramBucket:   50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		Gateway: GatewayConfig{
			Port:          8082,
			IngestionAddr: "localhost:9001",
			SearcherAddr:  "localhost:9000",
		},
	}
}

// applyEnvOverrides reads SE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SE_DATA_DIR"); v != "" {
		cfg.Paths.DataDir = v
	}
	if v := os.Getenv("SE_INDEXES_DIR"); v != "" {
		cfg.Paths.IndexesDir = v
	}
	if v := os.Getenv("SE_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SE_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SE_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SE_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SE_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("SE_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SE_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("SE_GATEWAY_SEARCHER_ADDR"); v != "" {
		cfg.Gateway.SearcherAddr = v
	}
	if v := os.Getenv("SE_GATEWAY_INGESTION_ADDR"); v != "" {
		cfg.Gateway.IngestionAddr = v
	}
}
