package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// DefaultSystemPrompt es la instrucción fija que precede cada conversación.
const DefaultSystemPrompt = "You are a helpful assistant responding to messages. Keep responses concise and friendly."

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"messages.db"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY,required,notEmpty"`
	LLMBaseURL    string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel      string `env:"LLM_MODEL" envDefault:"gpt-4.1"`
	SystemPrompt  string `env:"SYSTEM_PROMPT" envDefault:"You are a helpful assistant responding to messages. Keep responses concise and friendly."`
	HistoryWindow int    `env:"HISTORY_WINDOW" envDefault:"0"`

	APIKey         string `env:"API_KEY"`
	APIKeyRequired bool   `env:"API_KEY_REQUIRED" envDefault:"true"`

	SlackBotToken        string `env:"SLACK_BOT_TOKEN"`
	SlackSigningSecret   string `env:"SLACK_SIGNING_SECRET"`
	SlackEventTTLMinutes int    `env:"SLACK_EVENT_TTL_MINUTES" envDefault:"60"`

	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	SMSRateLimit         int    `env:"SMS_RATE_LIMIT" envDefault:"30"`
	SMSRateWindowSeconds int    `env:"SMS_RATE_WINDOW_SECONDS" envDefault:"60"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsePostgres indica si el historial vive en PostgreSQL en lugar del archivo SQLite.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func (c *Config) SlackEventTTL() time.Duration {
	return time.Duration(c.SlackEventTTLMinutes) * time.Minute
}

func (c *Config) SMSRateWindow() time.Duration {
	return time.Duration(c.SMSRateWindowSeconds) * time.Second
}
