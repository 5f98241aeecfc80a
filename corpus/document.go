// Package corpus tracks the documents a session grounds answers in and keeps
// local membership consistent with what the ingestion backend has indexed.
package corpus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoDocuments = fmt.Errorf("%w: no documents selected", gateway.ErrValidation)
	ErrNotPDF      = fmt.Errorf("%w: only PDF documents are supported", gateway.ErrValidation)
	ErrEmptyCorpus = fmt.Errorf("%w: no indexed documents to summarize", gateway.ErrValidation)

	ErrUnknownDocument = errors.New("unknown document")
	ErrIndexing        = fmt.Errorf("%w: document is being indexed", lifecycle.ErrStateConflict)

	// ErrPersisted is returned by Discard for documents the backend already
	// holds; they must go through Delete.
	ErrPersisted = errors.New("document is indexed and must be deleted on the backend")

	// ErrNotDeleted means the backend answered successfully but reported
	// fewer deletions than requested.
	ErrNotDeleted = errors.New("backend did not delete the document")
)

const pdfMIME = "application/pdf"

type State int

const (
	Selected State = iota
	Indexing
	Indexed
	Removed
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case Indexing:
		return "indexing"
	case Indexed:
		return "indexed"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Document is one entry of the corpus. Data is held only until the backend
// confirms indexing.
type Document struct {
	ID     string
	Name   string
	Data   []byte
	State  State
	Chunks int
}

// OverflowPolicy decides what happens when a selection would exceed the
// cardinality bound.
type OverflowPolicy string

const (
	// DropNewest keeps the documents already present and drops the surplus
	// of the new selection.
	DropNewest OverflowPolicy = "drop_newest"

	// Replace swaps out every not-yet-uploaded document for the new
	// selection, then truncates it to the bound. Indexed documents stay.
	Replace OverflowPolicy = "replace"
)

func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch p := OverflowPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", DropNewest:
		return DropNewest, nil
	case Replace:
		return Replace, nil
	default:
		return "", fmt.Errorf("%w: unknown overflow policy %q", gateway.ErrValidation, s)
	}
}

// IsPDF sniffs the content rather than trusting the file name.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(pdfMIME)
}

func checkPDFs(files []gateway.File) error {
	for _, f := range files {
		if len(f.Data) == 0 {
			return fmt.Errorf("%w: %s is empty", ErrNotPDF, f.Name)
		}
		if !IsPDF(f.Data) {
			return fmt.Errorf("%w: %s is %s", ErrNotPDF, f.Name, mimetype.Detect(f.Data).String())
		}
	}
	return nil
}
