package config

import (
	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/validation"
)

// Environments a process may declare.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ServiceConfig contains the fields every dataflow process needs. Task files
// embed it next to their own sections.
//
//	type TaskFile struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Task executor.Config `yaml:"task" mapstructure:"task"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the embedded ServiceConfig of a task file.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }

// ApplyDefaults names the process "dataflow" in development, where logging
// drops to debug.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "dataflow"
	}
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	c.Debug = c.Debug || c.Environment == EnvDevelopment
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the service fields and the nested logging section.
func (c *ServiceConfig) Validate() error { return validation.Validate(c) }
