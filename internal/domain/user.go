// Package domain contains entity without logic, just meta-data
package domain

const MaxDisplayNameLen = 36

type UserID string

// Identity is the ephemeral display record of one connection.
// ID equals the connection id and is never reused after disconnect.
type Identity struct {
	ID          UserID `json:"userId"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}
