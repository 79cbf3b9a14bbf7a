package config

var (
	ServiceVersion = "dev"
	CommitSHA      string
)

type (
	ServiceConfig struct {
		App         App         `json:"app"`
		Logging     Logging     `json:"logging"`
		Translation Translation `json:"translation"`
		Telemetry   Telemetry   `json:"telemetry"`
	}

	App struct {
		ServiceName string      `envconfig:"APP_SERVICE_NAME" default:"specplan" json:"service_name"`
		Env         Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	Logging struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format string `envconfig:"LOG_FORMAT" default:"console" json:"format"`
	}

	Translation struct {
		Placeholder      string `envconfig:"SQL_PLACEHOLDER" default:"dollar" json:"placeholder"`
		QuoteIdentifiers bool   `envconfig:"SQL_QUOTE_IDENTIFIERS" default:"false" json:"quote_identifiers"`
	}

	Telemetry struct {
		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)
