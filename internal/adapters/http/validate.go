package httpadapter

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	minMessageLength = 1
	maxMessageLength = 5000

	maxConversationIDLength = 100
)

var conversationIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateMessage(message string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(message))
	if length < minMessageLength {
		return fmt.Errorf("message cannot be empty")
	}
	if length > maxMessageLength {
		return fmt.Errorf("message must not exceed %d characters", maxMessageLength)
	}
	return nil
}

func validateConversationID(id string) error {
	if id == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	if len(id) > maxConversationIDLength {
		return fmt.Errorf("conversation ID is too long")
	}
	if !conversationIDPattern.MatchString(id) {
		return fmt.Errorf("conversation ID contains invalid characters")
	}
	return nil
}

// parseLimit reads the limit query parameter, enforcing the [1,100] range.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	if n < 1 || n > 100 {
		return 0, fmt.Errorf("limit must be between 1 and 100")
	}
	return n, nil
}
