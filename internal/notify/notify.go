package notify

import (
	"fmt"
	"strings"
	"time"
)

// Notification reasons, in priority order.
const (
	ReasonTargetHit = "target_hit"
	ReasonNewLow    = "new_low"
	ReasonPriceDrop = "price_drop"
)

// Channel names recorded in the notifications audit log.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// Alert is the structured payload handed to every channel.
type Alert struct {
	TaskID        int
	TaskName      string
	Origin        string
	Destination   string
	DepartureDate string
	Reason        string
	CurrentPrice  float64
	PreviousPrice *float64
	PriceChange   float64
	ChangePercent float64
	TargetPrice   *float64
	Currency      string
	TriggeredAt   time.Time
}

// Subject builds a one-line summary for subject lines and log entries.
func (a Alert) Subject() string {
	route := fmt.Sprintf("%s → %s", a.Origin, a.Destination)
	switch a.Reason {
	case ReasonTargetHit:
		return fmt.Sprintf("Target price hit: %s at %.0f %s", route, a.CurrentPrice, a.Currency)
	case ReasonNewLow:
		return fmt.Sprintf("New lowest price: %s at %.0f %s", route, a.CurrentPrice, a.Currency)
	case ReasonPriceDrop:
		return fmt.Sprintf("Price drop: %s at %.0f %s (%.1f%%)", route, a.CurrentPrice, a.Currency, a.ChangePercent)
	default:
		return fmt.Sprintf("Price update: %s at %.0f %s", route, a.CurrentPrice, a.Currency)
	}
}

// Body renders the full multi-line message shared by all channels.
func (a Alert) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", a.Subject())
	if a.TaskName != "" {
		fmt.Fprintf(&b, "Tracked search: %s\n", a.TaskName)
	}
	fmt.Fprintf(&b, "Route: %s → %s departing %s\n", a.Origin, a.Destination, a.DepartureDate)
	fmt.Fprintf(&b, "Current price: %.2f %s\n", a.CurrentPrice, a.Currency)
	if a.PreviousPrice != nil {
		fmt.Fprintf(&b, "Previous price: %.2f %s (change %+.2f, %+.1f%%)\n",
			*a.PreviousPrice, a.Currency, a.PriceChange, a.ChangePercent)
	}
	if a.TargetPrice != nil {
		fmt.Fprintf(&b, "Target price: %.2f %s\n", *a.TargetPrice, a.Currency)
	}
	fmt.Fprintf(&b, "Checked at: %s\n", a.TriggeredAt.Format("2006-01-02 15:04 MST"))
	return b.String()
}

// Dispatcher fans an alert out to the configured channels. Each channel fails
// independently; a dispatch error never propagates into scheduling state.
type Dispatcher interface {
	Send(alert Alert) []ChannelResult
}

// ChannelResult is the per-channel delivery outcome.
type ChannelResult struct {
	Channel   string
	Delivered bool
	Err       error
}
