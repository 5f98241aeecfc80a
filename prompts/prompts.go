package prompts

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

type draftData struct {
	Intent   string
	Tone     string
	Language string
}

// RenderDraftPrompt renders the system and user prompts for a drafting call.
// withTemplate selects the structured workplace-template system prompt.
func RenderDraftPrompt(intent, tone, language string, withTemplate bool) (systemPrompt, userPrompt string, err error) {
	data := draftData{
		Intent:   intent,
		Tone:     tone,
		Language: language,
	}

	systemFile := "templates/draft_system.md"
	if withTemplate {
		systemFile = "templates/template_system.md"
	}

	systemPrompt, err = render(systemFile, data)
	if err != nil {
		return "", "", err
	}

	userPrompt, err = render("templates/draft_user.md", data)
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}

func render(name string, data any) (string, error) {
	content, err := templatesFS.ReadFile(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
