package codegen

import (
	"strings"
	"unicode/utf8"

	"go-codegen-pipeline/internal/model"
)

// Hard ceilings in centimeters.
const (
	MaxMatrixSideCm   = 30.0
	MaxLinearWidthCm  = 40.0
	MaxLinearHeightCm = 20.0
)

// Normalize applies the affix rule for the configured data mode.
func Normalize(value string, cfg model.GenerationConfig) string {
	if cfg.Mode == model.ModeNumericWithAffixes {
		return cfg.Prefix + value + cfg.Suffix
	}
	return value
}

// ValidateDimensions checks every configured size against zero and its ceiling.
func ValidateDimensions(cfg model.GenerationConfig) error {
	checks := []struct {
		field string
		value float64
		max   float64
	}{
		{"matrix width", cfg.Matrix.WidthCm, MaxMatrixSideCm},
		{"matrix height", cfg.Matrix.HeightCm, MaxMatrixSideCm},
		{"linear width", cfg.Linear.WidthCm, MaxLinearWidthCm},
		{"linear height", cfg.Linear.HeightCm, MaxLinearHeightCm},
	}
	for _, c := range checks {
		if c.value <= 0 || c.value > c.max {
			return &InvalidDimensionError{Field: c.field, Value: c.value, Max: c.max}
		}
	}
	return nil
}

// ValidateStyle checks that both colors parse.
func ValidateStyle(cfg model.GenerationConfig) error {
	if _, err := ParseColor(cfg.Foreground); err != nil {
		return err
	}
	_, err := ParseColor(cfg.Background)
	return err
}

// ValidateAndNormalize checks the batch against cfg and returns the raw values
// that pass, in input order, together with the number rejected. Rendering
// normalizes again from the same config.
func ValidateAndNormalize(raw []string, cfg model.GenerationConfig) ([]string, int, error) {
	if len(raw) == 0 {
		return nil, 0, ErrEmptyInput
	}
	if len(raw) > cfg.MaxItemsPerBatch {
		return nil, 0, &BatchTooLargeError{Count: len(raw), Limit: cfg.MaxItemsPerBatch}
	}
	if err := ValidateDimensions(cfg); err != nil {
		return nil, 0, err
	}

	valid := make([]string, 0, len(raw))
	rejected := 0
	for _, v := range raw {
		if !acceptable(Normalize(v, cfg), cfg) {
			rejected++
			continue
		}
		valid = append(valid, v)
	}
	if len(valid) == 0 {
		return nil, rejected, ErrAllRejected
	}
	return valid, rejected, nil
}

func acceptable(normalized string, cfg model.GenerationConfig) bool {
	if strings.TrimSpace(normalized) == "" {
		return false
	}
	if utf8.RuneCountInString(normalized) > cfg.MaxValueLength {
		return false
	}
	if cfg.Family == model.FamilyLinear && hasControlChar(normalized) {
		return false
	}
	return true
}

func hasControlChar(s string) bool {
	for _, r := range s {
		if r < 32 {
			return true
		}
	}
	return false
}

// PreviewValues returns up to n raw values that would pass item validation.
// Batch-level limits are not applied.
func PreviewValues(raw []string, cfg model.GenerationConfig, n int) []string {
	out := make([]string, 0, n)
	for _, v := range raw {
		if len(out) >= n {
			break
		}
		if acceptable(Normalize(v, cfg), cfg) {
			out = append(out, v)
		}
	}
	return out
}

// SampleValue is a placeholder that renders cleanly for the given family.
func SampleValue(family model.CodeFamily) string {
	if family == model.FamilyLinear {
		return "123456789012"
	}
	return "https://example.com"
}
