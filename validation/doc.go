// Package validation checks configuration structs and request input.
//
// Struct tags are evaluated with go-playground/validator; field names in
// messages come from mapstructure or json tags so they match what operators
// and clients actually wrote:
//
//	type JobConfig struct {
//	    DefaultLanguage string `mapstructure:"default_language" validate:"required,language"`
//	}
//	err := validation.Validate(cfg)
//
// Request handlers use the chaining Validator instead:
//
//	v := validation.New()
//	v.Required("audio", name).Language("language", lang)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
