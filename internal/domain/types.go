package domain

import "time"

type ConversationID string
type ExchangeID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ValidRole reports whether r is one of the two accepted message roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAssistant
}

type Timestamp = time.Time
