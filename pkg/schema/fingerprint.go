package schema

import "fable/pkg/utils"

// Fingerprint is the structured set of visual attributes a vision model
// extracts from an image. Every field is constrained to a fixed allowed
// set; unknown values are coerced to the field's default.
type Fingerprint struct {
	ColorTone   string `json:"colorTone" jsonschema:"enum=warm,enum=cool,enum=neutral,enum=monochrome,enum=vibrant,enum=muted" jsonschema_description:"Dominant color temperature of the image"`
	Composition string `json:"composition" jsonschema:"enum=close-up,enum=medium,enum=wide,enum=portrait,enum=landscape,enum=overhead" jsonschema_description:"Framing of the primary subject"`
	Mood        string `json:"mood" jsonschema:"enum=dramatic,enum=serene,enum=tense,enum=whimsical,enum=melancholy,enum=hopeful" jsonschema_description:"Emotional tone conveyed by the image"`
	Lighting    string `json:"lighting" jsonschema:"enum=day,enum=night,enum=golden-hour,enum=neon,enum=candlelight,enum=overcast" jsonschema_description:"Primary lighting condition"`
	Style       string `json:"style" jsonschema:"enum=realistic,enum=painterly,enum=anime,enum=sketch,enum=noir,enum=cinematic" jsonschema_description:"Rendering style of the image"`
}

var (
	ColorTones   = []string{"warm", "cool", "neutral", "monochrome", "vibrant", "muted"}
	Compositions = []string{"close-up", "medium", "wide", "portrait", "landscape", "overhead"}
	Moods        = []string{"dramatic", "serene", "tense", "whimsical", "melancholy", "hopeful"}
	Lightings    = []string{"day", "night", "golden-hour", "neon", "candlelight", "overcast"}
	Styles       = []string{"realistic", "painterly", "anime", "sketch", "noir", "cinematic"}
)

// Variant spellings models commonly produce, mapped to canonical values.
var fingerprintAliases = map[string]string{
	"close up":        "close-up",
	"closeup":         "close-up",
	"wide shot":       "wide",
	"wide-shot":       "wide",
	"medium shot":     "medium",
	"golden hour":     "golden-hour",
	"goldenhour":      "golden-hour",
	"daytime":         "day",
	"nighttime":       "night",
	"black and white": "monochrome",
	"b&w":             "monochrome",
	"cartoon":         "anime",
	"photorealistic":  "realistic",
}

// ValidateFingerprint normalizes variant spellings and coerces any value
// outside the allowed sets to that field's default.
func ValidateFingerprint(fp Fingerprint) Fingerprint {
	fp.ColorTone = utils.CoerceEnum(fp.ColorTone, ColorTones, "neutral", fingerprintAliases)
	fp.Composition = utils.CoerceEnum(fp.Composition, Compositions, "medium", fingerprintAliases)
	fp.Mood = utils.CoerceEnum(fp.Mood, Moods, "dramatic", fingerprintAliases)
	fp.Lighting = utils.CoerceEnum(fp.Lighting, Lightings, "day", fingerprintAliases)
	fp.Style = utils.CoerceEnum(fp.Style, Styles, "cinematic", fingerprintAliases)
	return fp
}
