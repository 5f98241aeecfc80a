package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SaiNageswarS/heywrite/answer"
	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/gateway"
)

func printAnswer(w io.Writer, a answer.Answer) {
	fmt.Fprintln(w, a.Text)
	if len(a.Sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, c := range a.Sources {
		fmt.Fprintln(w, c.Label())
	}
}

func printDocuments(w io.Writer, docs []corpus.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents.")
		return
	}
	for i, d := range docs {
		line := fmt.Sprintf("%d. %s [%s]", i+1, d.Name, d.State)
		if d.State == corpus.Indexed {
			line += fmt.Sprintf(" %d chunks", d.Chunks)
		}
		fmt.Fprintln(w, line)
	}
}

func printSelection(w io.Writer, res corpus.SelectResult) {
	for _, d := range res.Accepted {
		fmt.Fprintf(w, "Selected %s\n", d.Name)
	}
	for _, name := range res.Dropped {
		fmt.Fprintf(w, "Skipped %s (document limit reached or already uploaded)\n", name)
	}
}

// readFiles loads documents from disk; the base name is what the backend sees.
func readFiles(paths []string) ([]gateway.File, error) {
	files := make([]gateway.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", p, err)
		}
		files = append(files, gateway.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}
