package packets

// CreateTaskRequest creates a recurring tracked search. Dates accept absolute
// YYYY-MM-DD values or relative offsets like "+30d".
type CreateTaskRequest struct {
	Name          string   `json:"name" binding:"required"`
	Origin        string   `json:"origin" binding:"required"`
	Destination   string   `json:"destination" binding:"required"`
	DepartureDate string   `json:"departure_date" binding:"required"`
	ReturnDate    *string  `json:"return_date"`
	Passengers    int      `json:"passengers"`
	CabinClass    string   `json:"cabin_class"`
	CronExpr      string   `json:"cron_expr" binding:"required"`
	PriceTarget   *float64 `json:"price_target"`
}

type UpdateTaskRequest struct {
	Name          *string  `json:"name"`
	Origin        *string  `json:"origin"`
	Destination   *string  `json:"destination"`
	DepartureDate *string  `json:"departure_date"`
	ReturnDate    *string  `json:"return_date"`
	Passengers    *int     `json:"passengers"`
	CabinClass    *string  `json:"cabin_class"`
	CronExpr      *string  `json:"cron_expr"`
	PriceTarget   *float64 `json:"price_target"`
}

type SetTaskActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreateAlertRequest creates a one-shot price watch. The alert expires at the
// departure date.
type CreateAlertRequest struct {
	Origin        string  `json:"origin" binding:"required"`
	Destination   string  `json:"destination" binding:"required"`
	DepartureDate string  `json:"departure_date" binding:"required"`
	ReturnDate    *string `json:"return_date"`
	TargetPrice   float64 `json:"target_price" binding:"required,gt=0"`
	Currency      string  `json:"currency"`
}

type CompareRoutesRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
	ReturnDate    string `json:"return_date"`
	Passengers    int    `json:"passengers"`
	CabinClass    string `json:"cabin_class"`
	MaxHubs       int    `json:"max_hubs"`
}
