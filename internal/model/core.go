package model

// CodeFamily selects the symbology used to render a value.
type CodeFamily string

const (
	FamilyMatrix CodeFamily = "matrix" // QR-style 2D code
	FamilyLinear CodeFamily = "linear" // Code128-style 1D barcode
)

// DataMode controls how a raw value is normalized before encoding.
type DataMode string

const (
	ModeRawText            DataMode = "raw-text"
	ModeNumericWithAffixes DataMode = "numeric-with-affixes"
)

// OutputKind selects the sink a run writes to.
type OutputKind string

const (
	OutputLooseImages       OutputKind = "loose-images"
	OutputPaginatedDocument OutputKind = "paginated-document"
	OutputArchive           OutputKind = "archive"
)

// ImageFormat is the per-file format used by the loose-images sink.
type ImageFormat string

const (
	FormatRaster ImageFormat = "png"
	FormatVector ImageFormat = "svg"
)

const (
	DefaultMaxItemsPerBatch = 5000
	DefaultMaxValueLength   = 512
)

// Size is a physical box in centimeters.
type Size struct {
	WidthCm   float64 `json:"width_cm" mapstructure:"width_cm"`
	HeightCm  float64 `json:"height_cm" mapstructure:"height_cm"`
	KeepRatio bool    `json:"keep_ratio" mapstructure:"keep_ratio"`
}

// GenerationConfig describes one run's rendering and validation parameters.
// It is built once per run request and passed by value afterwards.
type GenerationConfig struct {
	Family           CodeFamily `json:"family" mapstructure:"family" validate:"omitempty,oneof=matrix linear"`
	Mode             DataMode   `json:"mode" mapstructure:"mode" validate:"omitempty,oneof=raw-text numeric-with-affixes"`
	Prefix           string     `json:"prefix" mapstructure:"prefix"`
	Suffix           string     `json:"suffix" mapstructure:"suffix"`
	Foreground       string     `json:"foreground" mapstructure:"foreground"`
	Background       string     `json:"background" mapstructure:"background"`
	Matrix           Size       `json:"matrix" mapstructure:"matrix"`
	Linear           Size       `json:"linear" mapstructure:"linear"`
	MaxItemsPerBatch int        `json:"max_items_per_batch" mapstructure:"max_items_per_batch" validate:"gte=0"`
	MaxValueLength   int        `json:"max_value_length" mapstructure:"max_value_length" validate:"gte=0"`
}

// DefaultGenerationConfig returns the settings used when a caller leaves fields unset.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Family:           FamilyMatrix,
		Mode:             ModeRawText,
		Foreground:       "black",
		Background:       "white",
		Matrix:           Size{WidthCm: 4, HeightCm: 4, KeepRatio: true},
		Linear:           Size{WidthCm: 8, HeightCm: 3, KeepRatio: true},
		MaxItemsPerBatch: DefaultMaxItemsPerBatch,
		MaxValueLength:   DefaultMaxValueLength,
	}
}

// WithDefaults fills zero-valued limits, colors and enums from DefaultGenerationConfig.
// Sizes are left alone so that an explicit zero still fails dimension checks.
func (c GenerationConfig) WithDefaults() GenerationConfig {
	d := DefaultGenerationConfig()
	if c.Family == "" {
		c.Family = d.Family
	}
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.Foreground == "" {
		c.Foreground = d.Foreground
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	if c.MaxItemsPerBatch <= 0 {
		c.MaxItemsPerBatch = d.MaxItemsPerBatch
	}
	if c.MaxValueLength <= 0 {
		c.MaxValueLength = d.MaxValueLength
	}
	return c
}

// ActiveSize returns the box for the configured family.
func (c GenerationConfig) ActiveSize() Size {
	if c.Family == FamilyLinear {
		return c.Linear
	}
	return c.Matrix
}
