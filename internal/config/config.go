package config

import (
	"os"
)

// Config pd-smartdoc (HTTP API) configuration
type Config struct {
	HTTP struct {
		Addr string
	}
	Data struct {
		Dir string // directory holding the JSON collection files
	}
	Log struct {
		Level  string
		Format string
	}
	Auth AuthConfig
	SAI  SAIConfig
}

// AuthConfig single credential pair for the login endpoint.
// The product has exactly one user; anything more is out of scope.
type AuthConfig struct {
	User     string
	Password string
}

// SAIConfig SAI Library template-execution service configuration.
// Template ids are pre-registered on the SAI side, one per document type.
type SAIConfig struct {
	BaseURL       string
	APIKey        string
	EDPSTemplate  string
	DVPTemplate   string
	DFMEATemplate string
}

// Configured reports whether the AI integration can be used at all.
func (s SAIConfig) Configured() bool {
	return s.APIKey != ""
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3001")
	cfg.Data.Dir = getEnv("DATA_DIR", "data")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// Dev default matches the seeded frontend login.
	cfg.Auth.User = getEnv("AUTH_USER", "engineer")
	cfg.Auth.Password = getEnv("AUTH_PASSWORD", "admin123")

	cfg.SAI.BaseURL = getEnv("SAI_BASE_URL", "https://sai-library.saiapplications.com/api/templates")
	cfg.SAI.APIKey = getEnv("SAI_API_KEY", "")
	cfg.SAI.EDPSTemplate = getEnv("SAI_EDPS_TEMPLATE", "69132d45057530242d71a7c6")   // Criador de norma - EDP
	cfg.SAI.DVPTemplate = getEnv("SAI_DVP_TEMPLATE", "6913977b057530242d720f2c")    // Criador de testes - DVP
	cfg.SAI.DFMEATemplate = getEnv("SAI_DFMEA_TEMPLATE", "69137dd6861d3932bb6e6a00") // Criador de falhas - DFMEA

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
