package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFingerprintPassesCanonicalValues(t *testing.T) {
	fp := Fingerprint{
		ColorTone:   "warm",
		Composition: "close-up",
		Mood:        "serene",
		Lighting:    "golden-hour",
		Style:       "noir",
	}
	assert.Equal(t, fp, ValidateFingerprint(fp))
}

func TestValidateFingerprintNormalizesVariants(t *testing.T) {
	fp := ValidateFingerprint(Fingerprint{
		ColorTone:   "black and white",
		Composition: "close up",
		Mood:        "Serene",
		Lighting:    "golden hour",
		Style:       "photorealistic",
	})
	assert.Equal(t, "monochrome", fp.ColorTone)
	assert.Equal(t, "close-up", fp.Composition)
	assert.Equal(t, "serene", fp.Mood)
	assert.Equal(t, "golden-hour", fp.Lighting)
	assert.Equal(t, "realistic", fp.Style)
}

func TestValidateFingerprintCoercesUnknownsToDefaults(t *testing.T) {
	fp := ValidateFingerprint(Fingerprint{
		ColorTone:   "sparkly",
		Composition: "fisheye",
		Mood:        "confused",
		Lighting:    "strobe",
		Style:       "cubist",
	})
	assert.Equal(t, "neutral", fp.ColorTone)
	assert.Equal(t, "medium", fp.Composition)
	assert.Equal(t, "dramatic", fp.Mood)
	assert.Equal(t, "day", fp.Lighting)
	assert.Equal(t, "cinematic", fp.Style)
}

func TestValidateFingerprintEmptyGetsDefaults(t *testing.T) {
	fp := ValidateFingerprint(Fingerprint{})
	assert.Equal(t, "neutral", fp.ColorTone)
	assert.Equal(t, "medium", fp.Composition)
	assert.Equal(t, "dramatic", fp.Mood)
	assert.Equal(t, "day", fp.Lighting)
	assert.Equal(t, "cinematic", fp.Style)
}
