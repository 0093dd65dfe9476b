package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-codegen-pipeline/internal/model"
)

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.GenerationConfig)
		field  string
	}{
		{"zero matrix width", func(c *model.GenerationConfig) { c.Matrix.WidthCm = 0 }, "matrix width"},
		{"negative matrix height", func(c *model.GenerationConfig) { c.Matrix.HeightCm = -1 }, "matrix height"},
		{"matrix side over ceiling", func(c *model.GenerationConfig) { c.Matrix.WidthCm = 30.1 }, "matrix width"},
		{"linear width over ceiling", func(c *model.GenerationConfig) { c.Linear.WidthCm = 41 }, "linear width"},
		{"linear height over ceiling", func(c *model.GenerationConfig) { c.Linear.HeightCm = 20.5 }, "linear height"},
		{"zero linear height", func(c *model.GenerationConfig) { c.Linear.HeightCm = 0 }, "linear height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultGenerationConfig()
			tt.mutate(&cfg)

			err := ValidateDimensions(cfg)
			require.ErrorIs(t, err, ErrInvalidDimension)
			var dimErr *InvalidDimensionError
			require.True(t, errors.As(err, &dimErr))
			require.Equal(t, tt.field, dimErr.Field)

			_, _, err = ValidateAndNormalize([]string{"A"}, cfg)
			require.ErrorIs(t, err, ErrInvalidDimension)
		})
	}
}

func TestValidateDimensions_CeilingsInclusive(t *testing.T) {
	cfg := model.DefaultGenerationConfig()
	cfg.Matrix = model.Size{WidthCm: 30, HeightCm: 30}
	cfg.Linear = model.Size{WidthCm: 40, HeightCm: 20}
	require.NoError(t, ValidateDimensions(cfg))
}

func TestValidateAndNormalize_KeepsOrder(t *testing.T) {
	cfg := model.DefaultGenerationConfig()
	raw := []string{"c", "a", "b", "a"}

	valid, rejected, err := ValidateAndNormalize(raw, cfg)
	require.NoError(t, err)
	require.Zero(t, rejected)
	require.Equal(t, raw, valid)
}

func TestValidateAndNormalize_Errors(t *testing.T) {
	cfg := model.DefaultGenerationConfig()

	_, _, err := ValidateAndNormalize(nil, cfg)
	require.ErrorIs(t, err, ErrEmptyInput)

	raw := make([]string, cfg.MaxItemsPerBatch+1)
	for i := range raw {
		raw[i] = "x"
	}
	_, _, err = ValidateAndNormalize(raw, cfg)
	require.ErrorIs(t, err, ErrBatchTooLarge)
	var big *BatchTooLargeError
	require.True(t, errors.As(err, &big))
	require.Equal(t, 5001, big.Count)
	require.Equal(t, 5000, big.Limit)

	_, rejected, err := ValidateAndNormalize([]string{"", "  ", "\t"}, cfg)
	require.ErrorIs(t, err, ErrAllRejected)
	require.Equal(t, 3, rejected)
}

func TestValidateAndNormalize_Rejections(t *testing.T) {
	cfg := model.DefaultGenerationConfig()
	cfg.Family = model.FamilyLinear
	cfg.MaxValueLength = 5

	valid, rejected, err := ValidateAndNormalize([]string{"ok", "bad\x01", "toolong", " ", "fine"}, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"ok", "fine"}, valid)
	require.Equal(t, 3, rejected)

	// control characters are fine for matrix codes
	cfg.Family = model.FamilyMatrix
	valid, rejected, err = ValidateAndNormalize([]string{"bad\x01"}, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"bad\x01"}, valid)
	require.Zero(t, rejected)
}

func TestValidateAndNormalize_AffixesReturnRawValues(t *testing.T) {
	cfg := model.DefaultGenerationConfig()
	cfg.Mode = model.ModeNumericWithAffixes
	cfg.Prefix = "ID-"
	cfg.Suffix = "-X"
	cfg.MaxValueLength = 8

	valid, rejected, err := ValidateAndNormalize([]string{"123", "", "1234"}, cfg)
	require.NoError(t, err)
	// "" becomes "ID--X" and passes; "1234" becomes 9 characters and fails
	require.Equal(t, []string{"123", ""}, valid)
	require.Equal(t, 1, rejected)
	require.Equal(t, "ID-123-X", Normalize("123", cfg))
}

func TestValidateAndNormalize_LengthCountsCharacters(t *testing.T) {
	cfg := model.DefaultGenerationConfig()
	cfg.MaxValueLength = 3

	valid, _, err := ValidateAndNormalize([]string{"ção", strings.Repeat("a", 4)}, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"ção"}, valid)
}

func TestPreviewValues(t *testing.T) {
	cfg := model.DefaultGenerationConfig()
	got := PreviewValues([]string{"", "a", " ", "b", "c"}, cfg, 2)
	require.Equal(t, []string{"a", "b"}, got)
	require.Empty(t, PreviewValues([]string{""}, cfg, 3))
}

func TestSampleValue(t *testing.T) {
	require.Equal(t, "123456789012", SampleValue(model.FamilyLinear))
	require.Equal(t, "https://example.com", SampleValue(model.FamilyMatrix))
}
