package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment names a deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
	StoreMySQL    = "mysql"
	StoreDynamoDB = "dynamodb"
)

// Config is the complete application configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment" validate:"required,oneof=development staging production"`
	Server      Server      `yaml:"server" json:"server"`
	Logging     Logging     `yaml:"logging" json:"logging"`
	Store       Store       `yaml:"store" json:"store"`
	Providers   Providers   `yaml:"providers" json:"providers"`
	Boardroom   Boardroom   `yaml:"boardroom" json:"boardroom"`
	Mentions    Mentions    `yaml:"mentions" json:"mentions"`
	CORS        CORS        `yaml:"cors" json:"cors"`
	Metrics     Metrics     `yaml:"metrics" json:"metrics"`
	Tracing     Tracing     `yaml:"tracing" json:"tracing"`

	// LoadedFrom lists the sources that contributed, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server holds HTTP server settings. A zero WriteTimeout leaves responses
// unbounded, which the provider calls rely on.
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"min=0"`
	MaxRequestSize  int64         `yaml:"max_request_size" json:"max_request_size" validate:"min=0"`
}

// Address returns host:port.
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Logging struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=json console"`
}

// Store selects and configures the backing store.
type Store struct {
	Driver        string   `yaml:"driver" json:"driver" validate:"required,oneof=memory supabase sqlite mysql dynamodb"`
	MemoryTable   string   `yaml:"memory_table" json:"memory_table" validate:"required"`
	MessagesTable string   `yaml:"messages_table" json:"messages_table" validate:"required"`
	Supabase      Supabase `yaml:"supabase" json:"supabase"`
	SQLitePath    string   `yaml:"sqlite_path" json:"sqlite_path"`
	DatabaseURL   string   `yaml:"database_url" json:"database_url"`
	DynamoDB      DynamoDB `yaml:"dynamodb" json:"dynamodb"`
}

type Supabase struct {
	URL string `yaml:"url" json:"url"`
	Key string `yaml:"key" json:"key"`
}

type DynamoDB struct {
	TableName string `yaml:"table_name" json:"table_name"`
	Region    string `yaml:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
}

// Providers configures the two model gateways. Missing API keys are
// accepted; the upstream rejects the call and the caller sees fallback text.
type Providers struct {
	Fake    bool     `yaml:"fake" json:"fake"`
	Claude  Provider `yaml:"claude" json:"claude"`
	ChatGPT Provider `yaml:"chatgpt" json:"chatgpt"`
}

type Provider struct {
	APIKey    string        `yaml:"api_key" json:"api_key"`
	Endpoint  string        `yaml:"endpoint" json:"endpoint" validate:"omitempty,url"`
	Model     string        `yaml:"model" json:"model"`
	MaxTokens int           `yaml:"max_tokens" json:"max_tokens" validate:"min=0"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" validate:"min=0"`
	Breaker   Breaker       `yaml:"breaker" json:"breaker"`
}

// Breaker configures the optional per-provider circuit breaker.
type Breaker struct {
	Enabled          bool          `yaml:"enabled" json:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests"`
	Interval         time.Duration `yaml:"interval" json:"interval" validate:"min=0"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" validate:"min=0"`
	FailureThreshold float64       `yaml:"failure_threshold" json:"failure_threshold" validate:"min=0,max=1"`
	MinRequests      uint32        `yaml:"min_requests" json:"min_requests"`
}

// Boardroom holds the dispatch knobs. Both can be changed at runtime.
type Boardroom struct {
	MaxHistoryTurns int    `yaml:"max_history_turns" json:"max_history_turns" validate:"min=0"`
	FallbackText    string `yaml:"fallback_text" json:"fallback_text"`
}

type Mentions struct {
	Claude  []string `yaml:"claude" json:"claude"`
	ChatGPT []string `yaml:"chatgpt" json:"chatgpt"`
}

type CORS struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" json:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" json:"allow_credentials"`
	MaxAge           int      `yaml:"max_age" json:"max_age" validate:"min=0"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required"`
	Path      string `yaml:"path" json:"path" validate:"startswith=/"`
}

type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate" validate:"min=0,max=1"`
	Insecure    bool    `yaml:"insecure" json:"insecure"`
}

// ============================================================================
// VALIDATION
// ============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags, then the settings each store driver needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	switch c.Store.Driver {
	case StoreSupabase:
		if c.Store.Supabase.URL == "" || c.Store.Supabase.Key == "" {
			return fmt.Errorf("invalid configuration: store.supabase.url and store.supabase.key are required for the supabase driver")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("invalid configuration: store.sqlite_path is required for the sqlite driver")
		}
	case StoreMySQL:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("invalid configuration: store.database_url is required for the mysql driver")
		}
	case StoreDynamoDB:
		if c.Store.DynamoDB.TableName == "" {
			return fmt.Errorf("invalid configuration: store.dynamodb.table_name is required for the dynamodb driver")
		}
	}

	if c.Environment == Production && c.Providers.Fake {
		return fmt.Errorf("invalid configuration: fake providers are not allowed in production")
	}
	return nil
}

// IsDevelopment reports whether hot reload and local overrides apply.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// CurrentEnvironment reads ENVIRONMENT, defaulting to development.
func CurrentEnvironment() Environment {
	env, err := ParseEnvironment(os.Getenv("ENVIRONMENT"))
	if err != nil {
		return Development
	}
	return env
}

// ParseEnvironment maps a name to an Environment. An empty name is
// development.
func ParseEnvironment(name string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(name))); env {
	case "":
		return Development, nil
	case Development, Staging, Production:
		return env, nil
	default:
		return "", fmt.Errorf("unknown environment %q", name)
	}
}
