package models

import (
	"time"
)

// CalendarSource is one subscribed iCalendar feed.
type CalendarSource struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	URL   string `json:"url" mapstructure:"url"`
	Color string `json:"color" mapstructure:"color"`
}

// CalendarConfig is the calendar-dashboard.json document.
type CalendarConfig struct {
	DefaultCalendars []CalendarSource `json:"defaultCalendars" mapstructure:"defaultCalendars"`
	ColorPalette     []string         `json:"colorPalette" mapstructure:"colorPalette"`
}

// CalendarEvent is a flattened VEVENT.
type CalendarEvent struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	CalendarName  string    `json:"calendar_name"`
	CalendarColor string    `json:"calendar_color"`
}

// FeedError reports a feed that could not be fetched or parsed.
type FeedError struct {
	SourceID string `json:"source_id"`
	Message  string `json:"message"`
}

// CalendarEvents is the aggregated response of the events endpoint.
type CalendarEvents struct {
	Events []CalendarEvent `json:"events"`
	Errors []FeedError     `json:"errors"`
}
