package model

// ParsedQuery is the resolved output of the upstream natural-language query
// parser. The parser itself lives outside this service; endpoints accept this
// shape directly so parsed and hand-built queries go through the same path.
type ParsedQuery struct {
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DepartureDate  string   `json:"departure_date"`
	ReturnDate     *string  `json:"return_date,omitempty"`
	Passengers     int      `json:"passengers"`
	CabinClass     string   `json:"cabin_class"`
	NonStopOnly    bool     `json:"non_stop_only,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty"`
	Confidence     float64  `json:"confidence"`
	Clarifications []string `json:"clarifications,omitempty"`
}
