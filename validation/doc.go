// Package validation checks pipeline configuration before a run starts.
//
// It supports struct tag validation (using the validator library) for
// per-field rules and a programmatic Validator for rules spanning several
// fields. Both report failures as an INVALID_CONFIG *errors.AppError whose
// message names the offending configuration keys.
//
// # Struct Tag Validation
//
//	type Thresholds struct {
//	    RawAbsolute int `mapstructure:"rawabsolute" validate:"gte=0"`
//	}
//	err := validation.Validate(t)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Distinct("pairID2", cfg.PairID1, cfg.PairID2)
//	err := v.Validate()
package validation
