// Package quality implements the pre-approval quality gate: a weighted,
// platform-aware scoring of a creation's body and title across six
// dimensions, gating entry into risk assessment.
package quality

// LengthRange is an inclusive ideal character-count band.
type LengthRange struct {
	Min, Max int
}

// SentenceRange is an inclusive ideal average words-per-sentence band.
type SentenceRange struct {
	Min, Max int
}

// Profile is a platform's quality thresholds and style rules.
type Profile struct {
	MinLength           int
	MaxLength           int
	IdealLength         LengthRange
	RequiresParagraphs  bool
	RequiresSections    bool
	RequiresPacing      bool
	IdealSentenceLength SentenceRange
	BannedWords         []string
	HookMaxLength       int
	MaxExclamations     int
}

// AutoRejectThreshold: content scoring below this is never published.
const AutoRejectThreshold = 0.4

// WarningThreshold: content scoring below this passes but is flagged.
const WarningThreshold = 0.6

// Profiles holds the per-platform quality profile, keyed by platform name.
var Profiles = map[string]Profile{
	"linkedin": {
		MinLength: 150, MaxLength: 3000, IdealLength: LengthRange{300, 1500},
		RequiresParagraphs:  true,
		IdealSentenceLength: SentenceRange{12, 25},
		BannedWords:         []string{"revolutionary", "game-changing", "excited to announce", "synergy", "leverage"},
		HookMaxLength:       200, MaxExclamations: 1,
	},
	"twitter": {
		MinLength: 20, MaxLength: 280, IdealLength: LengthRange{100, 250},
		IdealSentenceLength: SentenceRange{5, 15},
		BannedWords:         []string{"revolutionary"},
		HookMaxLength:       100, MaxExclamations: 2,
	},
	"youtube": {
		MinLength: 100, MaxLength: 1000, IdealLength: LengthRange{200, 500},
		RequiresPacing:      true,
		IdealSentenceLength: SentenceRange{8, 18},
		BannedWords:         []string{"click below", "smash that like"},
		HookMaxLength:       50, MaxExclamations: 2,
	},
	"tiktok": {
		MinLength: 20, MaxLength: 300, IdealLength: LengthRange{50, 200},
		IdealSentenceLength: SentenceRange{5, 12},
		HookMaxLength:       40, MaxExclamations: 3,
	},
	"medium": {
		MinLength: 500, MaxLength: 10000, IdealLength: LengthRange{1200, 4000},
		RequiresParagraphs:  true,
		RequiresSections:    true,
		IdealSentenceLength: SentenceRange{15, 30},
		BannedWords:         []string{"revolutionary", "game-changing"},
		HookMaxLength:       250, MaxExclamations: 2,
	},
}

// weights are the per-dimension contribution to the overall score,
// tuned per content shape: short-form weighs hook/substance higher,
// long-form weighs structure/substance higher.
var weights = map[string]map[string]float64{
	"short": {"length": 0.15, "readability": 0.15, "structure": 0.10, "title": 0.10, "substance": 0.25, "hook": 0.25},
	"long":  {"length": 0.15, "readability": 0.20, "structure": 0.20, "title": 0.15, "substance": 0.20, "hook": 0.10},
	"default": {
		"length": 0.15, "readability": 0.15, "structure": 0.15, "title": 0.10, "substance": 0.25, "hook": 0.20,
	},
}

func weightsFor(platform string) map[string]float64 {
	switch platform {
	case "twitter", "tiktok":
		return weights["short"]
	case "medium":
		return weights["long"]
	default:
		return weights["default"]
	}
}

func profileFor(platform string) Profile {
	if p, ok := Profiles[platform]; ok {
		return p
	}
	return Profiles["linkedin"]
}
