package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Provider selects which AI backend is tried first at startup.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// StorageBackend selects the conversation store implementation.
type StorageBackend string

const (
	BackendMongo  StorageBackend = "mongo"
	BackendMemory StorageBackend = "memory"
)

type Config struct {
	AppName string
	Debug   bool

	Host string
	Port string

	// MongoDB connection. Either a full URI or user/password/host parts.
	MongoURIRaw   string
	MongoUsername string
	MongoPassword string
	MongoHost     string
	MongoDBName   string
	MongoUseSRV   bool

	StorageBackend StorageBackend

	AIProvider Provider
	UseMockAI  bool // true = use the mock provider regardless of keys

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	CORSOrigins []string

	MaxChatHistory int

	// ConversationTTLDays is declared configuration with no enforcement
	// anywhere in the service; retention is left to the operator.
	ConversationTTLDays int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load reads all env vars and builds the config.
func Load() *Config {
	provider := ProviderOpenAI
	if strings.EqualFold(getEnv("AI_PROVIDER", "openai"), "gemini") {
		provider = ProviderGemini
	}

	backend := BackendMongo
	if strings.EqualFold(getEnv("STORAGE_BACKEND", "mongo"), "memory") {
		backend = BackendMemory
	}

	return &Config{
		AppName: getEnv("APP_NAME", "Chatbot API"),
		Debug:   getBoolEnv("DEBUG", false),

		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "8000"),

		MongoURIRaw:   getEnv("MONGO_URI", ""),
		MongoUsername: getEnv("MONGO_USERNAME", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),
		MongoHost:     getEnv("MONGO_HOST", ""),
		MongoDBName:   getEnv("MONGO_DB_NAME", "chatbot_db"),
		MongoUseSRV:   getBoolEnv("MONGO_USE_SRV", false),

		StorageBackend: backend,

		AIProvider: provider,
		UseMockAI:  getBoolEnv("USE_MOCK_AI", false),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		MaxChatHistory:      getIntEnv("MAX_CHAT_HISTORY", 50),
		ConversationTTLDays: getIntEnv("CONVERSATION_TTL_DAYS", 30),
	}
}

// MongoURI returns the connection URI, composing it from parts when no
// full URI is configured.
func (c *Config) MongoURI() (string, error) {
	if c.MongoURIRaw != "" {
		return c.MongoURIRaw, nil
	}

	if c.MongoUsername == "" || c.MongoPassword == "" || c.MongoHost == "" {
		return "", fmt.Errorf("mongodb credentials not properly configured")
	}

	protocol := "mongodb"
	if c.MongoUseSRV {
		protocol = "mongodb+srv"
	}
	return fmt.Sprintf("%s://%s:%s@%s/%s?retryWrites=true&w=majority",
		protocol, c.MongoUsername, c.MongoPassword, c.MongoHost, c.MongoDBName), nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
