// Package domain contains core concepts of the chat system.
// This file defines the authenticated identity of the current user.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type User struct {
	ID    string
	Email string
}

// Session is created at sign-in, replaced on token refresh
// and cleared on sign-out.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        User
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ExpiresWithin reports whether the token ends before now+d.
func (s Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !now.Add(d).Before(s.ExpiresAt)
}
