package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Unknown is stored when a language label cannot be resolved.
const Unknown = "unknown"

// byWord resolves full word forms that BCP 47 parsing does not cover.
var byWord = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

// Normalize maps a collaborator-reported language label to an ISO 639-1 code,
// or Unknown when the label is empty or unresolvable.
func Normalize(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == Unknown {
		return Unknown
	}

	if code, ok := byWord[label]; ok {
		return code
	}

	if len(label) == 2 || len(label) == 3 {
		if base, err := language.ParseBase(label); err == nil {
			return base.String()
		}
	}

	if tag, err := language.Parse(label); err == nil {
		if base, confidence := tag.Base(); confidence > language.No {
			return base.String()
		}
	}

	return Unknown
}
