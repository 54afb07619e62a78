package user

import "strings"

// User is a bare profile name. There are no credentials.
type User struct {
	Username string
}

// Normalize trims surrounding whitespace from a username as typed at login.
func Normalize(username string) string {
	return strings.TrimSpace(username)
}
