package entity

// EventType names a content view event.
type EventType string

const (
	EventURLChanged       EventType = "url_changed"
	EventLoadStarted      EventType = "load_started"
	EventPageLoadFinished EventType = "page_load_finished"
	EventCookiesChanged   EventType = "cookies_changed"
)

// Event is delivered to listeners of its Type. Data is opaque to the registry.
type Event struct {
	Type EventType
	Data any
}

// ListenerID identifies one subscription in an event registry.
type ListenerID uint64

// LoadFinished is the data of EventPageLoadFinished.
type LoadFinished struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
