package classify

// Keyword tables. Matching is a case-insensitive substring test against
// lower-cased text, so entries must be lower case.
var (
	civilKeywords = []string{
		"construction", "civil", "upgrade", "water upgrade", "corridors of freedom",
		"pumpstation", "pump station", "reticulation", "sewer", "roads",
		"earthworks", "structural", "tower", "towers", "reservoir",
		"building", "infrastructure",
	}

	tesKeywords = []string{
		"chemical", "chemicals", "dosing", "chlorine", "hypochlorite", "biocide",
		"surfactant", "dispersant", "amine", "cooling", "cooling tower",
		"boiler", "steam", "ro", "reverse osmosis", "filtration",
		"water treatment plant", "softener",
	}

	phakathiKeywords = []string{
		"pumps", "pump", "valves", "fabrication", "mechanical", "electrical",
		"switchgear", "motors", "install", "installation",
		"maintenance", "commissioning", "steelwork",
	}
)

// Signals used by the confidence-scored decision.
var (
	scopeLabelOutPhrases = []string{"out of scope", "out-of-scope", "civil", "infrastructure"}

	insightOutPhrases = []string{"outside our scope", "outside scope"}

	civilSignals = []string{
		"civil", "construction", "infrastructure", "pumpstation", "pump station",
		"earthworks", "building", "upgrade", "roads", "stormwater",
	}
)
