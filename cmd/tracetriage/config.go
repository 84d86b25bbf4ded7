package main

type (
	// ServiceConfig carries the environment-level defaults. Command-line
	// flags override them.
	ServiceConfig struct {
		Environment string `env:"TRACETRIAGE_ENVIRONMENT" env-default:"development"`
		SentryDSN   string `env:"SENTRY_DSN"`

		EngineURL           string  `env:"TRACETRIAGE_ENGINE_URL"`
		FocusProcess        string  `env:"TRACETRIAGE_FOCUS_PROCESS"`
		LongTaskThresholdMs float64 `env:"TRACETRIAGE_LONG_TASK_MS" env-default:"50"`
		TopN                int     `env:"TRACETRIAGE_TOP_N" env-default:"5"`
		SchemaVersion       string  `env:"TRACETRIAGE_SCHEMA_VERSION" env-default:"A2"`

		OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
		OpenAIModel   string `env:"OPENAI_MODEL"`
		OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	}
)
