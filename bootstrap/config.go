package bootstrap

import (
	"github.com/kbukum/dataflow/config"
)

// Config is the interface constraint for task configuration types.
// Any struct that embeds config.ServiceConfig gets GetServiceConfig through
// promotion and only needs to define its own ApplyDefaults and Validate.
//
//	type TaskFile struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Task executor.Config `yaml:"task" mapstructure:"task"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
