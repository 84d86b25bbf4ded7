package main

type (
	ServiceConfig struct {
		Environment string `env:"TRACETRIAGE_ENVIRONMENT" env-default:"development"`
		Port        string `env:"PORT" env-default:"8080"`
		SentryDSN   string `env:"SENTRY_DSN"`

		LongTaskThresholdMs float64 `env:"TRACETRIAGE_LONG_TASK_MS" env-default:"50"`
		TopN                int     `env:"TRACETRIAGE_TOP_N" env-default:"5"`
		SchemaVersion       string  `env:"TRACETRIAGE_SCHEMA_VERSION" env-default:"A2"`

		OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
		OpenAIModel   string `env:"OPENAI_MODEL"`
		OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	}
)
