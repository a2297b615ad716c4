package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string           `mapstructure:"port"`
	Confluence ConfluenceConfig `mapstructure:"confluence"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Weaviate   WeaviateConfig   `mapstructure:"weaviate"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	RAG        RAGConfig        `mapstructure:"rag"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Sync       SyncConfig       `mapstructure:"sync"`
}

type ConfluenceConfig struct {
	BaseURL           string   `mapstructure:"base_url"`
	Username          string   `mapstructure:"username"`
	APIToken          string   `mapstructure:"api_token"`
	Spaces            []string `mapstructure:"spaces"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
}

// OpenAIConfig configures the embedding provider. Both plain
// OpenAI-compatible endpoints and Azure OpenAI deployments are supported.
type OpenAIConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	UseAzure       bool   `mapstructure:"use_azure"`
	APIVersion     string `mapstructure:"api_version"`
}

// ChatConfig configures answer generation. Endpoint and key fall back to the
// embedding provider's when left empty, matching single-resource setups.
type ChatConfig struct {
	Provider     string `mapstructure:"provider"`
	Endpoint     string `mapstructure:"endpoint"`
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
}

type WeaviateConfig struct {
	Host      string `mapstructure:"host"`
	Scheme    string `mapstructure:"scheme"`
	APIKey    string `mapstructure:"api_key"`
	ClassName string `mapstructure:"class_name"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RAGConfig struct {
	TopK        int     `mapstructure:"top_k"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type ProcessingConfig struct {
	ChunkSize          int `mapstructure:"chunk_size"`
	ChunkOverlap       int `mapstructure:"chunk_overlap"`
	EmbeddingBatchSize int `mapstructure:"embedding_batch_size"`
	IndexingBatchSize  int `mapstructure:"indexing_batch_size"`
}

type SyncConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("port", "8080")
	v.SetDefault("confluence.requests_per_second", 5.0)
	v.SetDefault("openai.embedding_model", "text-embedding-3-large")
	v.SetDefault("openai.api_version", "2024-02-01")
	v.SetDefault("chat.provider", "openai")
	v.SetDefault("chat.model", "gpt-35-turbo")
	v.SetDefault("chat.gemini_model", "gemini-1.5-flash")
	v.SetDefault("weaviate.scheme", "http")
	v.SetDefault("weaviate.class_name", "KnowledgeChunk")
	v.SetDefault("mongo.database", "rag_be")
	v.SetDefault("rag.top_k", 5)
	v.SetDefault("rag.temperature", 0.7)
	v.SetDefault("rag.max_tokens", 1000)
	v.SetDefault("processing.chunk_size", 800)
	v.SetDefault("processing.chunk_overlap", 100)
	v.SetDefault("processing.embedding_batch_size", 16)
	v.SetDefault("processing.indexing_batch_size", 200)
	v.SetDefault("sync.cron", "0 2 * * *")
	v.SetDefault("sync.timezone", "UTC")

	v.AutomaticEnv()

	// Bind environment variables for secrets and deploy-time overrides
	v.BindEnv("confluence.base_url", "CONFLUENCE_URL")
	v.BindEnv("confluence.username", "CONFLUENCE_USERNAME")
	v.BindEnv("confluence.api_token", "CONFLUENCE_API_TOKEN")
	v.BindEnv("openai.endpoint", "OPENAI_ENDPOINT")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("chat.endpoint", "CHAT_ENDPOINT")
	v.BindEnv("chat.api_key", "CHAT_API_KEY")
	v.BindEnv("chat.gemini_api_key", "GEMINI_API_KEY")
	v.BindEnv("weaviate.host", "WEAVIATE_HOST")
	v.BindEnv("weaviate.api_key", "WEAVIATE_APIKEY")
	v.BindEnv("mongo.uri", "MONGODB_URI")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, everything can come from the
		// environment; a malformed file is not.
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Comma-separated space list from the environment wins over the file.
	if env := os.Getenv("CONFLUENCE_SPACES"); env != "" {
		config.Confluence.Spaces = strings.Split(env, ",")
	}

	// Chat falls back to the embedding provider's endpoint and key.
	if config.Chat.Endpoint == "" {
		config.Chat.Endpoint = config.OpenAI.Endpoint
	}
	if config.Chat.APIKey == "" {
		config.Chat.APIKey = config.OpenAI.APIKey
	}

	return &config, nil
}

// Validate checks that every setting without a usable default is present.
// It is called before any command does work; a failure is fatal.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"confluence.base_url", c.Confluence.BaseURL},
		{"confluence.username", c.Confluence.Username},
		{"confluence.api_token", c.Confluence.APIToken},
		{"openai.api_key", c.OpenAI.APIKey},
		{"weaviate.host", c.Weaviate.Host},
	}

	var missing []string
	for _, field := range required {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}

	if c.Chat.Provider == "gemini" && c.Chat.GeminiAPIKey == "" {
		missing = append(missing, "chat.gemini_api_key")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	spaces := make([]string, 0, len(c.Confluence.Spaces))
	for _, space := range c.Confluence.Spaces {
		if s := strings.TrimSpace(space); s != "" {
			spaces = append(spaces, s)
		}
	}
	c.Confluence.Spaces = spaces
	if len(c.Confluence.Spaces) == 0 {
		return fmt.Errorf("confluence.spaces must contain at least one space key")
	}

	return nil
}
