package llm

import (
	"testing"

	"google.golang.org/genai"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

func TestGeminiRoleMapping(t *testing.T) {
	var want genai.Role

	want = genai.RoleUser
	if got := geminiRole(domain.RoleUser); got != want {
		t.Errorf("user role = %q, want %q", got, want)
	}

	want = genai.RoleModel
	if got := geminiRole(domain.RoleAssistant); got != want {
		t.Errorf("assistant role = %q, want %q", got, want)
	}

	// Unknown roles fall back to the user side.
	want = genai.RoleUser
	if got := geminiRole(domain.Role("system")); got != want {
		t.Errorf("unknown role = %q, want %q", got, want)
	}
}
