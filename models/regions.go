package models

// Region is one of the 14 Czech administrative regions.
type Region string

const (
	RegionPrague          Region = "PRAGUE"
	RegionStredocesky     Region = "STREDOCESKY"
	RegionJihocesky       Region = "JIHOCESKY"
	RegionPlzensky        Region = "PLZENSKY"
	RegionKarlovarsky     Region = "KARLOVARSKY"
	RegionUstecky         Region = "USTECKY"
	RegionLiberecky       Region = "LIBERECKY"
	RegionKralovehradecky Region = "KRALOVEHRADECKY"
	RegionPardubicky      Region = "PARDUBICKY"
	RegionVysocina        Region = "VYSOCINA"
	RegionJihomoravsky    Region = "JIHOMORAVSKY"
	RegionOlomoucky       Region = "OLOMOUCKY"
	RegionZlinsky         Region = "ZLINSKY"
	RegionMoravskoslezsky Region = "MORAVSKOSLEZSKY"
)

var regionLabels = map[Region]string{
	RegionPrague:          "Praha",
	RegionStredocesky:     "Středočeský kraj",
	RegionJihocesky:       "Jihočeský kraj",
	RegionPlzensky:        "Plzeňský kraj",
	RegionKarlovarsky:     "Karlovarský kraj",
	RegionUstecky:         "Ústecký kraj",
	RegionLiberecky:       "Liberecký kraj",
	RegionKralovehradecky: "Královéhradecký kraj",
	RegionPardubicky:      "Pardubický kraj",
	RegionVysocina:        "Vysočina",
	RegionJihomoravsky:    "Jihomoravský kraj",
	RegionOlomoucky:       "Olomoucký kraj",
	RegionZlinsky:         "Zlínský kraj",
	RegionMoravskoslezsky: "Moravskoslezský kraj",
}

func (r Region) Valid() bool {
	_, ok := regionLabels[r]
	return ok
}

// Label returns the Czech display name, or the raw value for unknown regions.
func (r Region) Label() string {
	if l, ok := regionLabels[r]; ok {
		return l
	}
	return string(r)
}
