package prompts

import (
	"strings"
	"testing"
)

func TestRenderDraftPrompt(t *testing.T) {
	systemPrompt, userPrompt, err := RenderDraftPrompt("Write an invitation email", "Formal", "English", false)
	if err != nil {
		t.Fatalf("Failed to render draft prompt: %v", err)
	}

	expectedSystemContent := []string{
		"professional writing assistant",
		"workplace communication",
		"English",
		"Formal",
	}

	for _, expected := range expectedSystemContent {
		if !strings.Contains(systemPrompt, expected) {
			t.Errorf("System prompt should contain '%s'", expected)
		}
	}

	expectedUserContent := []string{
		"intent:Write an invitation email",
		"style:Formal",
		"language:English",
		"Please generate a suitable text",
	}

	for _, expected := range expectedUserContent {
		if !strings.Contains(userPrompt, expected) {
			t.Errorf("User prompt should contain '%s'", expected)
		}
	}

	if strings.Contains(systemPrompt, "standard workplace template") {
		t.Error("Plain draft prompt should not use the template system prompt")
	}
}

func TestRenderDraftPromptWithTemplate(t *testing.T) {
	systemPrompt, userPrompt, err := RenderDraftPrompt("Ask for a deadline extension", "Polite Push", "Danish", true)
	if err != nil {
		t.Fatalf("Failed to render template prompt: %v", err)
	}

	for _, expected := range []string{"standard workplace template", "call to action", "Danish", "Polite Push"} {
		if !strings.Contains(systemPrompt, expected) {
			t.Errorf("Template system prompt should contain '%s'", expected)
		}
	}

	if !strings.Contains(userPrompt, "intent:Ask for a deadline extension") {
		t.Error("User prompt should contain the intent")
	}
}

func TestRenderDraftPromptSpecialCharacters(t *testing.T) {
	// text/template does not escape, so the intent must survive verbatim
	intent := `Reply to "Q3 <budget>" & cc finance`
	_, userPrompt, err := RenderDraftPrompt(intent, "Concise & Direct", "Chinese", false)
	if err != nil {
		t.Fatalf("Failed to render prompt with special characters: %v", err)
	}

	if !strings.Contains(userPrompt, intent) {
		t.Errorf("User prompt should contain the raw intent, got %q", userPrompt)
	}
	if !strings.Contains(userPrompt, "style:Concise & Direct") {
		t.Error("User prompt should contain the raw tone")
	}
}

func TestRenderDraftPromptEmptyIntent(t *testing.T) {
	systemPrompt, userPrompt, err := RenderDraftPrompt("", "Casual", "English", false)
	if err != nil {
		t.Fatalf("Failed to render prompt with empty intent: %v", err)
	}

	if systemPrompt == "" || userPrompt == "" {
		t.Error("Prompts should render even with an empty intent")
	}
}
