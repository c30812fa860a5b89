package model

import "time"

// ================ Config ================

// DefaultTrustedDomains are the only domains medical searches may return.
var DefaultTrustedDomains = []string{
	"mayoclinic.org",
	"webmd.com",
	"nih.gov",
	"cdc.gov",
	"healthline.com",
	"medlineplus.gov",
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.3"`

	// Zero leaves thinking to the model default
	ThinkingBudget int32 `envconfig:"CHAT_THINKING_BUDGET" default:"512"`
}

type SearchConfig struct {
	APIKey         string        `envconfig:"TAVILY_API_KEY" required:"true"`
	BaseURL        string        `envconfig:"TAVILY_BASE_URL" default:"https://api.tavily.com"`
	MaxResults     int           `envconfig:"SEARCH_MAX_RESULTS" default:"3"`
	Depth          string        `envconfig:"SEARCH_DEPTH" default:"advanced"`
	IncludeDomains []string      `envconfig:"SEARCH_INCLUDE_DOMAINS" default:"mayoclinic.org,webmd.com,nih.gov,cdc.gov,healthline.com,medlineplus.gov"`
	Timeout        time.Duration `envconfig:"SEARCH_TIMEOUT" default:"30s"`
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"1h"`
}
