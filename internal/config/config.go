package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// UpstreamConfig points at the knowledge-box API. AskBaseURL exists because
// some deployments serve the generative endpoint from a different regional
// host than the rest of the API; empty means "same as BaseURL".
type UpstreamConfig struct {
	BaseURL      string
	AskBaseURL   string
	ServiceKey   string
	KnowledgeBox string
	UserID       string
}

// Configured reports whether the credential and knowledge-box id needed for
// live upstream calls are both present.
func (u UpstreamConfig) Configured() bool {
	return u.ServiceKey != "" && u.KnowledgeBox != ""
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LLMConfig struct {
	ServerURL string
	Model     string
}

type CacheConfig struct {
	ResponseTTL time.Duration
}

// LoadConfig reads config.yaml (when present) and applies environment
// overrides. The env variable names match the original deployment
// (RAG_API_BASE, RAG_KEY, KB_ID, USER_ID).
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("upstream.user_id", "user1")
	viper.SetDefault("llm.model", "qwen3:0.6b")
	viper.SetDefault("cache.response_ttl_hours", 24)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file is fine: everything can come from the environment.
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Upstream: UpstreamConfig{
			BaseURL:      viper.GetString("upstream.base_url"),
			AskBaseURL:   viper.GetString("upstream.ask_base_url"),
			ServiceKey:   viper.GetString("upstream.service_key"),
			KnowledgeBox: viper.GetString("upstream.knowledge_box"),
			UserID:       viper.GetString("upstream.user_id"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		LLM: LLMConfig{
			ServerURL: viper.GetString("llm.server"),
			Model:     viper.GetString("llm.model"),
		},
		Cache: CacheConfig{
			ResponseTTL: viper.GetDuration("cache.response_ttl_hours") * time.Hour,
		},
	}

	// Override with environment variables if set
	if base := os.Getenv("RAG_API_BASE"); base != "" {
		config.Upstream.BaseURL = base
	}
	if askBase := os.Getenv("RAG_ASK_BASE"); askBase != "" {
		config.Upstream.AskBaseURL = askBase
	}
	if key := os.Getenv("RAG_KEY"); key != "" {
		config.Upstream.ServiceKey = key
	}
	if kb := os.Getenv("KB_ID"); kb != "" {
		config.Upstream.KnowledgeBox = kb
	}
	if userID := os.Getenv("USER_ID"); userID != "" {
		config.Upstream.UserID = userID
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if llmServer := os.Getenv("LLM_SERVER"); llmServer != "" {
		config.LLM.ServerURL = llmServer
	}
	if llmModel := os.Getenv("LLM_MODEL"); llmModel != "" {
		config.LLM.Model = llmModel
	}

	return config, nil
}
