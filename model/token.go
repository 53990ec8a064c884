package model

import "time"

// Token is the OAuth access/refresh pair obtained at sign-in. It is stored
// per session and read by the upload pipeline on every attempt.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

func (t Token) Empty() bool {
	return t.AccessToken == ""
}
