package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix applied to generic environment overrides,
// e.g. TASKWEAVE_SERVER_PORT maps to server.port. Variables with an
// explicit env tag mapping are also honored without the prefix.
const EnvPrefix = "TASKWEAVE_"

// Service loads and validates application configuration.
type Service interface {
	Load(ctx context.Context) (*Config, error)
}

type loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
}

// NewService creates a configuration service backed by defaults and
// environment variables.
func NewService() Service {
	return &loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
	}
}

// LoadEnvFile loads a .env file into the process environment. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if strings.Contains(err.Error(), "no such file") {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// sensitiveStringDecodeHook converts plain strings to SensitiveString
// during unmarshaling.
func sensitiveStringDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(SensitiveString("")) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return SensitiveString(v), nil
	case []byte:
		return SensitiveString(v), nil
	default:
		return data, nil
	}
}

// Load builds the configuration from defaults and environment
// variables, then validates the result.
func (l *loader) Load(_ context.Context) (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, err
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	return l.unmarshalAndValidate()
}

func (l *loader) loadDefaults() error {
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return nil
}

// transformEnvKey converts an environment variable name (without prefix)
// to a koanf path: SERVER_PORT -> server.port, DATABASE_SSL_MODE ->
// database.ssl_mode.
func transformEnvKey(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '_'
	})
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + strings.Join(parts[1:], "_")
}

func (l *loader) loadEnvironment() error {
	envToPath := make(map[string]string)
	for _, mapping := range GenerateEnvMappings() {
		envToPath[mapping.EnvVar] = mapping.ConfigPath
	}
	err := l.koanf.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			if configPath, exists := envToPath[key]; exists {
				return configPath, value
			}
			if trimmed, ok := strings.CutPrefix(key, EnvPrefix); ok {
				return transformEnvKey(trimmed), value
			}
			return "", nil
		},
	}), nil)
	if err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

func (l *loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.koanf.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &config,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				sensitiveStringDecodeHook,
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := l.validator.Struct(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}
