package models

import "time"

// CodePurpose says what applying a mailed code does.
type CodePurpose string

const (
	PurposeVerifyEmail CodePurpose = "verify-email"
	PurposeChangeEmail CodePurpose = "change-email"
)

// VerificationCode is a single-use code. Only the digest of the code is
// stored; NewEmail is set for PurposeChangeEmail.
type VerificationCode struct {
	CodeHash  string
	UserID    string
	Purpose   CodePurpose
	NewEmail  string
	ExpiresAt time.Time
}

func (c *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
