package model

import "time"

const CredentialTimeLayout = "2006-01-02 15:04:05"

type Credential struct {
	Token     string
	ExpiresIn int
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used at now.
func (c Credential) Valid(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}
