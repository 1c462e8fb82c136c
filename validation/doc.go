// Package validation checks task and backend configuration.
//
// Struct tags go through the validator library, extended with "datatype"
// (a record data type name such as "integer") and "duration":
//
//	type Config struct {
//	    TaskID  string `mapstructure:"id" validate:"required"`
//	    KeyType string `mapstructure:"key_type" validate:"omitempty,datatype"`
//	}
//	err := validation.Validate(cfg)
//
// Cross-field rules use the chained Validator:
//
//	err := validation.New().
//	    Required("channels[0].name", c.Name).
//	    Unique("channels.name", names).
//	    Err()
//
// Both report an INVALID_CONFIG AppError listing every failed field.
package validation
