package models

import (
	"time"
)

// DayKeyLayout formats the UTC calendar day used to bucket usage.
const DayKeyLayout = "2006-01-02"

// DayKey returns the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// QuotaDecision is the outcome of a consume attempt.
type QuotaDecision struct {
	Allowed   bool `json:"allowed"`
	Used      int  `json:"used"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
}

// QuotaStatus is a read-only view of the current day's usage.
type QuotaStatus struct {
	Used      int  `json:"used"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
	CanSend   bool `json:"can_send"`
}

// NewQuotaStatus derives remaining and can_send from used and limit.
func NewQuotaStatus(used, limit int) QuotaStatus {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{
		Used:      used,
		Remaining: remaining,
		Limit:     limit,
		CanSend:   remaining > 0,
	}
}
