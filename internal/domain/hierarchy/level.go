package hierarchy

// Level names one tier of the Bangladeshi administrative hierarchy.
type Level string

const (
	Division Level = "division"
	District Level = "district"
	Upazila  Level = "upazila"
	Union    Level = "union"
	Ward     Level = "ward"
	Area     Level = "area"
)

// SurveyLevels is the six-tier chain carried by field submissions.
var SurveyLevels = []Level{Division, District, Upazila, Union, Ward, Area}

// BoundaryLevels is the chain carried by the upazila boundary dataset.
var BoundaryLevels = []Level{Division, District, Upazila}

// Entity exposes a value for each level. An empty string means the value is absent.
type Entity interface {
	LevelValue(level Level) string
}

// ParseLevel reports whether name is one of the known levels.
func ParseLevel(name string) (Level, bool) {
	for _, level := range SurveyLevels {
		if string(level) == name {
			return level, true
		}
	}
	return "", false
}
