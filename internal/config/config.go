// Package config loads the intake service configuration from defaults, an
// optional YAML file and FORMINTAKE_* environment variables, in that order.
package config

import (
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMINTAKE_"

// Config is the root configuration value.
type Config struct {
	Server   ServerConfig    `koanf:"server"`
	Log      LogConfig       `koanf:"log"`
	Catalog  CatalogConfig   `koanf:"catalog"`
	Identity IdentityConfig  `koanf:"identity"`
	Workflow WorkflowConfig  `koanf:"workflow"`
	Services []ServiceConfig `koanf:"services" validate:"dive"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"   validate:"gt=0"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error disabled"`
	JSON   bool   `koanf:"json"`
	Source bool   `koanf:"source"`
}

// CatalogConfig lists the schema documents forming the form catalog.
type CatalogConfig struct {
	Sources     []string      `koanf:"sources"`
	AllowHTTP   bool          `koanf:"allow_http"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
	// MaxDocumentBytes rejects remote catalogs above this size.
	MaxDocumentBytes int64 `koanf:"max_document_bytes" validate:"gte=0"`
	// ResolveReferences allows external $ref resolution in OpenAPI sources.
	ResolveReferences bool `koanf:"resolve_references"`
}

// IdentityConfig names the system user requests run as.
type IdentityConfig struct {
	SystemUser string `koanf:"system_user" validate:"required"`
}

// WorkflowConfig selects and configures the workflow engine.
type WorkflowConfig struct {
	Backend   string        `koanf:"backend"    validate:"oneof=memory http temporal"`
	BaseURL   string        `koanf:"base_url"   validate:"required_if=Backend http"`
	Token     string        `koanf:"token"`
	Timeout   time.Duration `koanf:"timeout"`
	HostPort  string        `koanf:"host_port"  validate:"required_if=Backend temporal"`
	Namespace string        `koanf:"namespace"`
	TaskQueue string        `koanf:"task_queue" validate:"required_if=Backend temporal"`
}

// ServiceConfig binds a service id to its workflow and accepted forms.
type ServiceConfig struct {
	ID                  string   `koanf:"id"                    validate:"required"`
	ProcessDefinitionID string   `koanf:"process_definition_id" validate:"required"`
	Forms               []string `koanf:"forms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
		Catalog: CatalogConfig{
			HTTPTimeout:      10 * time.Second,
			MaxDocumentBytes: 8 << 20,
		},
		Identity: IdentityConfig{
			SystemUser: "admin",
		},
		Workflow: WorkflowConfig{
			Backend:   "memory",
			Timeout:   30 * time.Second,
			Namespace: "default",
			TaskQueue: "intake",
		},
	}
}
