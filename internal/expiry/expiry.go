// Package expiry derives countdown, expiry and urgency for anything with an
// expiration date. Every function is pure; callers pass the current time so
// results are recomputed on each read.
package expiry

import (
	"math"
	"time"
)

type Urgency string

const (
	UrgencyExpired  Urgency = "expired"
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyCaution  Urgency = "caution"
	UrgencyOK       Urgency = "ok"
	// UrgencyNone is used when there is no expiry date, or a stored status
	// such as "renewed" supersedes the date math.
	UrgencyNone Urgency = "none"
)

const (
	CriticalDays = 7
	WarningDays  = 30
	CautionDays  = 60
)

// Stored statuses that take precedence over the dates.
const (
	StatusExpired = "expired"
	StatusRenewed = "renewed"
)

const day = 24 * time.Hour

type Result struct {
	DaysRemaining *int    `json:"days_remaining"`
	IsExpired     bool    `json:"is_expired"`
	Urgency       Urgency `json:"urgency"`
}

// DaysRemaining returns ceil((expiresAt - now) / 1 day).
func DaysRemaining(expiresAt, now time.Time) int {
	d := expiresAt.Sub(now)
	return int(math.Ceil(float64(d) / float64(day)))
}

func UrgencyFor(days int) Urgency {
	switch {
	case days < 0:
		return UrgencyExpired
	case days <= CriticalDays:
		return UrgencyCritical
	case days <= WarningDays:
		return UrgencyWarning
	case days <= CautionDays:
		return UrgencyCaution
	default:
		return UrgencyOK
	}
}

// IsExpired reports whether expiresAt lies at least one whole day behind now.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && DaysRemaining(*expiresAt, now) < 0
}

// Derive computes the read-time view of (expiresAt, status) at now.
func Derive(expiresAt *time.Time, status string, now time.Time) Result {
	switch status {
	case StatusRenewed:
		return Result{Urgency: UrgencyNone}
	case StatusExpired:
		r := Result{IsExpired: true, Urgency: UrgencyExpired}
		if expiresAt != nil {
			days := DaysRemaining(*expiresAt, now)
			r.DaysRemaining = &days
		}
		return r
	}

	if expiresAt == nil {
		return Result{Urgency: UrgencyNone}
	}

	days := DaysRemaining(*expiresAt, now)
	return Result{
		DaysRemaining: &days,
		IsExpired:     days < 0,
		Urgency:       UrgencyFor(days),
	}
}

// Within reports whether expiresAt is still ahead of now and no more than
// the given number of days away.
func Within(expiresAt *time.Time, now time.Time, days int) bool {
	if expiresAt == nil {
		return false
	}
	left := DaysRemaining(*expiresAt, now)
	return left >= 0 && left <= days
}
