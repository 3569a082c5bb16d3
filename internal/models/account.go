// Package models defines the records persisted by the account and submission
// stores. They are plain data with JSON tags matching the ledger document.
package models

import "time"

// Account is a registered user. Username is the unique, case-sensitive key.
type Account struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
