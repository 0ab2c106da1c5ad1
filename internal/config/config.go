package config

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars  `json:"env"`
	Prompts *Prompts `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Every upstream API key is optional: a missing key routes requests to
// the placeholder fallback instead of failing startup. Fields tagged
// `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GoogleAPIKey    string        `env:"GOOGLE_API_KEY" optional:"true"`
	GoogleSearchKey string        `env:"GOOGLE_SEARCH_API_KEY" optional:"true"`
	GoogleSearchCX  string        `env:"GOOGLE_SEARCH_CX" optional:"true"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"25s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`
}

// LoadConfig parses environment variables into the Config struct.
// Deployments that only set the numbered variants of the search
// credentials (GOOGLE_SEARCH_API_KEY_1 / GOOGLE_SEARCH_CX_1) are
// honored as a fallback.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}

	if config.EnvVars.GoogleSearchKey == "" {
		config.EnvVars.GoogleSearchKey = os.Getenv("GOOGLE_SEARCH_API_KEY_1")
	}
	if config.EnvVars.GoogleSearchCX == "" {
		config.EnvVars.GoogleSearchCX = os.Getenv("GOOGLE_SEARCH_CX_1")
	}

	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if isZeroValue(field) {
			return fmt.Errorf("$%s must be set", fieldType.Name)
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}

func isZeroValue(v reflect.Value) bool {
	return v.Interface() == reflect.Zero(v.Type()).Interface()
}
