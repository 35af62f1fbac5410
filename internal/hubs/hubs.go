package hubs

import (
	"sort"
	"strings"
	"time"

	"github.com/farewatch/farewatch/internal/model"
)

// catalog is the static table of intercontinental connecting hubs. Loaded
// once, never mutated.
var catalog = []model.StopoverHub{
	{
		Code: "DXB", Name: "Dubai International", City: "Dubai", Country: "United Arab Emirates",
		Region:   model.RegionMiddleEast,
		Connects: []model.Region{model.RegionEurope, model.RegionAsia, model.RegionAfrica, model.RegionOceania, model.RegionAmericas},
		Airlines: []string{"EK", "FZ"},
	},
	{
		Code: "DOH", Name: "Hamad International", City: "Doha", Country: "Qatar",
		Region:   model.RegionMiddleEast,
		Connects: []model.Region{model.RegionEurope, model.RegionAsia, model.RegionAfrica, model.RegionOceania, model.RegionAmericas},
		Airlines: []string{"QR"},
	},
	{
		Code: "IST", Name: "Istanbul Airport", City: "Istanbul", Country: "Turkey",
		Region:   model.RegionMiddleEast,
		Connects: []model.Region{model.RegionEurope, model.RegionAsia, model.RegionAfrica, model.RegionAmericas},
		Airlines: []string{"TK"},
	},
	{
		Code: "LHR", Name: "London Heathrow", City: "London", Country: "United Kingdom",
		Region:   model.RegionEurope,
		Connects: []model.Region{model.RegionAmericas, model.RegionAsia, model.RegionMiddleEast, model.RegionAfrica},
		Airlines: []string{"BA", "VS"},
	},
	{
		Code: "CDG", Name: "Paris Charles de Gaulle", City: "Paris", Country: "France",
		Region:   model.RegionEurope,
		Connects: []model.Region{model.RegionAmericas, model.RegionAsia, model.RegionAfrica, model.RegionMiddleEast},
		Airlines: []string{"AF"},
	},
	{
		Code: "FRA", Name: "Frankfurt Airport", City: "Frankfurt", Country: "Germany",
		Region:   model.RegionEurope,
		Connects: []model.Region{model.RegionAmericas, model.RegionAsia, model.RegionMiddleEast, model.RegionAfrica},
		Airlines: []string{"LH"},
	},
	{
		Code: "AMS", Name: "Amsterdam Schiphol", City: "Amsterdam", Country: "Netherlands",
		Region:   model.RegionEurope,
		Connects: []model.Region{model.RegionAmericas, model.RegionAsia, model.RegionAfrica},
		Airlines: []string{"KL"},
	},
	{
		Code: "MAD", Name: "Madrid Barajas", City: "Madrid", Country: "Spain",
		Region:   model.RegionEurope,
		Connects: []model.Region{model.RegionAmericas, model.RegionAfrica},
		Airlines: []string{"IB", "UX"},
	},
	{
		Code: "SIN", Name: "Singapore Changi", City: "Singapore", Country: "Singapore",
		Region:   model.RegionAsia,
		Connects: []model.Region{model.RegionEurope, model.RegionOceania, model.RegionMiddleEast, model.RegionAmericas},
		Airlines: []string{"SQ", "TR"},
	},
	{
		Code: "HKG", Name: "Hong Kong International", City: "Hong Kong", Country: "China",
		Region:   model.RegionAsia,
		Connects: []model.Region{model.RegionEurope, model.RegionOceania, model.RegionAmericas},
		Airlines: []string{"CX"},
	},
	{
		Code: "ICN", Name: "Seoul Incheon", City: "Seoul", Country: "South Korea",
		Region:   model.RegionAsia,
		Connects: []model.Region{model.RegionEurope, model.RegionAmericas, model.RegionOceania},
		Airlines: []string{"KE", "OZ"},
	},
	{
		Code: "BKK", Name: "Bangkok Suvarnabhumi", City: "Bangkok", Country: "Thailand",
		Region:   model.RegionAsia,
		Connects: []model.Region{model.RegionEurope, model.RegionOceania, model.RegionMiddleEast},
		Airlines: []string{"TG"},
	},
	{
		Code: "JFK", Name: "New York JFK", City: "New York", Country: "United States",
		Region:   model.RegionAmericas,
		Connects: []model.Region{model.RegionEurope, model.RegionMiddleEast, model.RegionAsia},
		Airlines: []string{"AA", "DL", "B6"},
	},
	{
		Code: "MIA", Name: "Miami International", City: "Miami", Country: "United States",
		Region:   model.RegionAmericas,
		Connects: []model.Region{model.RegionEurope},
		Airlines: []string{"AA"},
	},
	{
		Code: "LAX", Name: "Los Angeles International", City: "Los Angeles", Country: "United States",
		Region:   model.RegionAmericas,
		Connects: []model.Region{model.RegionAsia, model.RegionOceania, model.RegionEurope},
		Airlines: []string{"AA", "DL", "UA"},
	},
	{
		Code: "PTY", Name: "Tocumen International", City: "Panama City", Country: "Panama",
		Region:   model.RegionAmericas,
		Connects: []model.Region{model.RegionAmericas, model.RegionEurope},
		Airlines: []string{"CM"},
	},
	{
		Code: "GRU", Name: "Sao Paulo Guarulhos", City: "Sao Paulo", Country: "Brazil",
		Region:   model.RegionAmericas,
		Connects: []model.Region{model.RegionEurope, model.RegionAfrica, model.RegionMiddleEast},
		Airlines: []string{"LA", "G3"},
	},
	{
		Code: "SYD", Name: "Sydney Kingsford Smith", City: "Sydney", Country: "Australia",
		Region:   model.RegionOceania,
		Connects: []model.Region{model.RegionAsia, model.RegionAmericas, model.RegionMiddleEast},
		Airlines: []string{"QF"},
	},
	{
		Code: "ADD", Name: "Addis Ababa Bole", City: "Addis Ababa", Country: "Ethiopia",
		Region:   model.RegionAfrica,
		Connects: []model.Region{model.RegionEurope, model.RegionAsia, model.RegionAmericas, model.RegionMiddleEast},
		Airlines: []string{"ET"},
	},
}

// regionTable classifies non-hub airports. A code found in the hub catalog is
// classified by its hub entry first; this table is the second tier only.
var regionTable = map[model.Region][]string{
	model.RegionEurope: {
		"LGW", "STN", "ORY", "MUC", "ZRH", "VIE", "FCO", "MXP", "BCN",
		"LIS", "OPO", "DUB", "CPH", "OSL", "ARN", "HEL", "WAW", "PRG", "BUD", "ATH",
	},
	model.RegionMiddleEast: {
		"AUH", "SHJ", "RUH", "JED", "KWI", "BAH", "MCT", "AMM", "TLV",
	},
	model.RegionAsia: {
		"NRT", "HND", "KIX", "PVG", "PEK", "CAN", "SZX", "TPE", "MNL",
		"KUL", "CGK", "DPS", "SGN", "HAN", "DEL", "BOM", "BLR", "MAA", "CMB", "KTM",
	},
	model.RegionAmericas: {
		"EWR", "BOS", "ORD", "DFW", "IAH", "ATL", "SFO", "SEA", "YYZ", "YVR", "YUL",
		"MEX", "CUN", "BOG", "LIM", "SCL", "EZE", "AEP", "GIG", "MVD", "UIO", "PUJ",
	},
	model.RegionOceania: {
		"MEL", "BNE", "PER", "AKL", "WLG", "CHC", "NAN",
	},
	model.RegionAfrica: {
		"JNB", "CPT", "NBO", "CAI", "CMN", "LOS", "ACC", "DAR", "MRU",
	},
}

// minLayover is the per-hub minimum connection time used to derive the second
// leg's search date. Hubs not listed get the 2h default.
var minLayover = map[string]time.Duration{
	"DXB": 2 * time.Hour,
	"DOH": 90 * time.Minute,
	"IST": 2 * time.Hour,
	"SIN": 90 * time.Minute,
	"LHR": 3 * time.Hour,
	"CDG": 3 * time.Hour,
	"FRA": 2 * time.Hour,
	"JFK": 3 * time.Hour,
	"LAX": 3 * time.Hour,
}

// DefaultMinLayover applies to hubs with no entry in the connection table.
const DefaultMinLayover = 2 * time.Hour

// All returns the full hub catalog.
func All() []model.StopoverHub {
	out := make([]model.StopoverHub, len(catalog))
	copy(out, catalog)
	return out
}

// ByCode looks a hub up by IATA code.
func ByCode(code string) (model.StopoverHub, bool) {
	code = strings.ToUpper(code)
	for _, h := range catalog {
		if h.Code == code {
			return h, true
		}
	}
	return model.StopoverHub{}, false
}

// MinLayover returns the minimum connection time for a hub.
func MinLayover(code string) time.Duration {
	if d, ok := minLayover[strings.ToUpper(code)]; ok {
		return d
	}
	return DefaultMinLayover
}

// RegionOf maps an airport code to its coarse region. Hubs classify by their
// own catalog entry first, then the flat region table; anything else is
// RegionUnknown. The hub tier matters: a hub appearing as origin or
// destination must still classify into its home region.
func RegionOf(code string) model.Region {
	code = strings.ToUpper(code)
	if h, ok := ByCode(code); ok {
		return h.Region
	}
	for region, codes := range regionTable {
		for _, c := range codes {
			if c == code {
				return region
			}
		}
	}
	return model.RegionUnknown
}

// FindSuitable shortlists up to maxHubs stopover candidates between origin and
// destination. Same-region pairs get no candidates: a detour inside one region
// is not worth a stopover.
func FindSuitable(origin, destination string, maxHubs int) []model.StopoverHub {
	origin = strings.ToUpper(origin)
	destination = strings.ToUpper(destination)

	originRegion := RegionOf(origin)
	destRegion := RegionOf(destination)
	if originRegion == destRegion {
		return nil
	}

	var out []model.StopoverHub
	for _, h := range catalog {
		if h.Code == origin || h.Code == destination {
			continue
		}
		if bridges(h, originRegion) && bridges(h, destRegion) {
			out = append(out, h)
		}
	}

	europeAsia := (originRegion == model.RegionEurope && destRegion == model.RegionAsia) ||
		(originRegion == model.RegionAsia && destRegion == model.RegionEurope)

	sort.SliceStable(out, func(i, j int) bool {
		if europeAsia {
			iMid := out[i].Region == model.RegionMiddleEast
			jMid := out[j].Region == model.RegionMiddleEast
			if iMid != jMid {
				return iMid
			}
		}
		return len(out[i].Connects) > len(out[j].Connects)
	})

	if maxHubs >= 0 && len(out) > maxHubs {
		out = out[:maxHubs]
	}
	return out
}

// bridges reports whether hub h usefully serves region r, either as its home
// region or through its connects list.
func bridges(h model.StopoverHub, r model.Region) bool {
	if h.Region == r {
		return true
	}
	for _, c := range h.Connects {
		if c == r {
			return true
		}
	}
	return false
}
