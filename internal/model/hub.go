package model

// Region is a coarse geographic grouping used to shortlist stopover hubs.
type Region string

const (
	RegionEurope     Region = "europe"
	RegionMiddleEast Region = "middle_east"
	RegionAsia       Region = "asia"
	RegionAmericas   Region = "americas"
	RegionOceania    Region = "oceania"
	RegionAfrica     Region = "africa"
	RegionUnknown    Region = "unknown"
)

// StopoverHub is static reference data for a major connecting airport.
type StopoverHub struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	City     string   `json:"city"`
	Country  string   `json:"country"`
	Region   Region   `json:"region"`
	Connects []Region `json:"connects"`
	Airlines []string `json:"airlines,omitempty"`
}
