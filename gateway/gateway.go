package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Drafter generates text for an intent. Implementations perform exactly one
// network call per method and translate any non-success response into *Error.
type Drafter interface {
	Generate(ctx context.Context, req DraftRequest) (*DraftResponse, error)

	// GenerateWithTemplate never returns sources.
	GenerateWithTemplate(ctx context.Context, req DraftRequest) (*DraftResponse, error)
}

// Ingestor owns the indexed document corpus on the backend.
type Ingestor interface {
	Upload(ctx context.Context, files []File) (*UploadResponse, error)
	Delete(ctx context.Context, fileNames []string) (*DeleteResponse, error)
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// Gateway is the full backend surface.
type Gateway interface {
	Drafter
	Ingestor
}

type Tone string

const (
	ToneFormal     Tone = "Formal"
	ToneCasual     Tone = "Casual"
	TonePolitePush Tone = "Polite Push"
	ToneConcise    Tone = "Concise & Direct"
	ToneHumorous   Tone = "Humorous"
	ToneCreative   Tone = "Creative"
)

var tones = []Tone{ToneFormal, ToneCasual, TonePolitePush, ToneConcise, ToneHumorous, ToneCreative}

// Tones returns the closed set of supported tones in display order.
func Tones() []Tone {
	return append([]Tone(nil), tones...)
}

func (t Tone) Valid() bool {
	for _, known := range tones {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTone matches s against the known tones, ignoring case and surrounding space.
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	for _, known := range tones {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown tone %q", ErrValidation, s)
}

type Language string

const (
	LanguageEnglish Language = "English"
	LanguageDanish  Language = "Danish"
	LanguageChinese Language = "Chinese"
)

var languages = []Language{LanguageEnglish, LanguageDanish, LanguageChinese}

func Languages() []Language {
	return append([]Language(nil), languages...)
}

func (l Language) Valid() bool {
	for _, known := range languages {
		if l == known {
			return true
		}
	}
	return false
}

func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for _, known := range languages {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown language %q", ErrValidation, s)
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn as sent to the backend.
type Message struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // the message content
}

type DraftRequest struct {
	Intent   string    `json:"intent" validate:"notblank"`
	Tone     Tone      `json:"style" validate:"tone"`
	Language Language  `json:"language" validate:"language"`
	History  []Message `json:"history" validate:"dive"`
}

type DraftResponse struct {
	Reply   string     `json:"reply"`
	Sources []Citation `json:"sources,omitempty"`
}

// Citation points into the indexed corpus.
type Citation struct {
	Page      Locator `json:"page"`
	Source    string  `json:"source,omitempty"`
	Paragraph Locator `json:"paragraph,omitempty"`
}

// Label renders the citation the way it is shown next to an answer.
func (c Citation) Label() string {
	var b strings.Builder
	b.WriteString("Source: page ")
	b.WriteString(string(c.Page))
	if c.Paragraph != "" {
		b.WriteString(", paragraph ")
		b.WriteString(string(c.Paragraph))
	}
	if c.Source != "" {
		b.WriteString(" (")
		b.WriteString(c.Source)
		b.WriteString(")")
	}
	return b.String()
}

// Locator is a page or paragraph reference. The backend sends either numbers
// or strings ("?" for unknown pages); both decode to their textual form.
type Locator string

func (l *Locator) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Locator(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("locator must be a string or number: %w", err)
	}
	*l = Locator(n.String())
	return nil
}

func (l Locator) MarshalJSON() ([]byte, error) {
	// only canonical integers go out as numbers; "007" or "+5" stay strings
	if n, err := strconv.ParseInt(string(l), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(l) {
		return []byte(l), nil
	}
	return json.Marshal(string(l))
}

// File is a document payload for ingestion.
type File struct {
	Name string `validate:"required"`
	Data []byte `validate:"min=1"`
}

type FileChunks struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// UploadResponse normalises the batch shape {status, files:[...]} and the
// single-document shape {status, file, chunks} into Files.
type UploadResponse struct {
	Status string       `json:"status"`
	Files  []FileChunks `json:"files"`
}

func (r *UploadResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status string       `json:"status"`
		Files  []FileChunks `json:"files"`
		File   string       `json:"file"`
		Chunks int          `json:"chunks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Status = raw.Status
	r.Files = raw.Files
	if len(r.Files) == 0 && raw.File != "" {
		r.Files = []FileChunks{{File: raw.File, Chunks: raw.Chunks}}
	}
	return nil
}

type DeleteRequest struct {
	FileNames []string `json:"file_names" validate:"min=1,dive,required"`
}

type DeleteResponse struct {
	Status  string `json:"status"`
	Deleted int    `json:"deleted"`
}

type SummarizeRequest struct {
	Tone     Tone     `json:"style" validate:"tone"`
	Language Language `json:"language" validate:"language"`
}

type SummarizeResponse struct {
	Reply string `json:"reply"`
}
