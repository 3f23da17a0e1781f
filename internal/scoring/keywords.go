package scoring

// industryKeyword is one industry keyword and its value to the business.
type industryKeyword struct {
	keyword string
	score   int
}

// industryScores is ordered: on equal scores the earlier keyword wins.
var industryScores = []industryKeyword{
	{"power", 10},
	{"power station", 10},
	{"eskom", 10},
	{"generation", 9},
	{"mining", 9},
	{"mine", 9},
	{"petrochemical", 9},
	{"refinery", 9},
	{"sasol", 9},

	{"water utility", 8},
	{"rand water", 8},
	{"water board", 8},
	{"municipal", 7},
	{"municipality", 7},
	{"hospital", 7},
	{"healthcare", 7},
	{"food", 7},
	{"beverage", 7},
	{"brewery", 7},

	{"manufacturing", 6},
	{"industrial", 6},
	{"transport", 5},
	{"transnet", 5},
	{"port", 5},
	{"logistics", 5},
	{"university", 5},
	{"education", 4},

	{"retail", 3},
	{"office", 2},
	{"residential", 1},
}

var highRiskKeywords = []string{
	"urgent", "emergency", "immediate",
	"short deadline", "24 hour", "48 hour",
	"penalty", "liquidated damages", "ld clause",
	"performance bond", "bank guarantee",
	"joint venture required", "jv mandatory",
	"cidb 9", "cidb 8", "cidb 7",
	"international experience", "5 year experience",
}

var mediumRiskKeywords = []string{
	"cidb 6", "cidb 5",
	"3 year experience", "reference required",
	"site visit mandatory", "compulsory briefing",
	"subcontracting limited",
}

var lowRiskKeywords = []string{
	"no cidb required", "all suppliers welcome",
	"emerging contractor", "smme", "bbbee",
	"local supplier", "local content",
}

var highRevenueKeywords = []string{
	"multi-year", "3 year", "5 year", "framework",
	"panel", "r10", "r20", "r50", "r100",
	"million", "plant wide", "site wide",
	"power station", "all units",
}

var lowRevenueKeywords = []string{
	"once-off", "ad-hoc", "quotation",
	"small", "minor", "r100", "r200", "r500",
	"thousand",
}

var tesStrongFit = []string{
	"cooling water", "cooling tower", "condenser",
	"boiler", "steam", "feedwater", "blowdown",
	"chemical dosing", "water treatment", "chemistry",
	"scale", "corrosion", "biocide", "mexel",
	"thermal", "heat rate", "efficiency",
	"monitoring", "iot", "sensor", "instrumentation",
}

var tesModerateFit = []string{
	"water", "treatment", "chemical", "dosing",
	"industrial", "process", "plant",
}

var phakathiStrongFit = []string{
	"pump", "impeller", "shaft", "bearing",
	"white metal", "babbitt", "casting",
	"machining", "fabrication", "welding",
	"gearbox", "coupling", "mechanical seal",
	"refurbishment", "overhaul", "repair",
	"switchgear", "mcc", "panel", "distribution",
}

var phakathiModerateFit = []string{
	"mechanical", "rotating", "equipment",
	"maintenance", "workshop", "spares",
	"valve", "pipe", "flange",
}
