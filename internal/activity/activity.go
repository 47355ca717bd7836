// Package activity renders the dashboard activity feed.
package activity

// Type is the kind of event an activity records.
type Type string

const (
	TypeRateAlert    Type = "rate_alert"
	TypeClientUpdate Type = "client_update"
	TypeCallMade     Type = "call_made"
	TypeEmailSent    Type = "email_sent"
)

// Status is the optional outcome of an activity.
type Status string

const (
	StatusNone    Status = ""
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Activity is one feed entry. Timestamp is already formatted for display.
type Activity struct {
	ID        string `json:"id" yaml:"id"`
	Type      Type   `json:"type" yaml:"type"`
	Message   string `json:"message" yaml:"message"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Status    Status `json:"status,omitempty" yaml:"status,omitempty"`
}

type Icon string

const (
	IconTrendUp Icon = "trend-up"
	IconClock   Icon = "clock"
	IconPhone   Icon = "phone"
	IconMail    Icon = "mail"
)

type Tone string

const (
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
	ToneRed    Tone = "red"
	ToneGray   Tone = "gray"
)

// IconFor maps every type, known or not, to an icon. Unknown types get the clock.
func IconFor(t Type) Icon {
	switch t {
	case TypeRateAlert:
		return IconTrendUp
	case TypeClientUpdate:
		return IconClock
	case TypeCallMade:
		return IconPhone
	case TypeEmailSent:
		return IconMail
	default:
		return IconClock
	}
}

// ToneFor maps a status to its color tone. Absent or unknown status is gray.
func ToneFor(s Status) Tone {
	switch s {
	case StatusSuccess:
		return ToneGreen
	case StatusWarning:
		return ToneYellow
	case StatusError:
		return ToneRed
	default:
		return ToneGray
	}
}

// Item is an activity with its presentation resolved.
type Item struct {
	Activity
	Icon Icon `json:"icon"`
	Tone Tone `json:"tone"`
}

// Render resolves icon and tone for each activity, keeping input order.
func Render(activities []Activity) []Item {
	items := make([]Item, len(activities))
	for i, a := range activities {
		items[i] = Item{Activity: a, Icon: IconFor(a.Type), Tone: ToneFor(a.Status)}
	}
	return items
}
