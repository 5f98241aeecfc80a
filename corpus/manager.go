package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/go-collection-boot/ds"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxDocuments = 5

// Manager is the sole mutator of the corpus. Its lock is never held across a
// backend call; callers serialize backend-calling operations themselves.
type Manager struct {
	ingestor     gateway.Ingestor
	maxDocuments int
	overflow     OverflowPolicy

	mu   sync.Mutex
	docs []*Document
}

func NewManager(ingestor gateway.Ingestor, maxDocuments int, overflow OverflowPolicy) *Manager {
	if maxDocuments <= 0 {
		maxDocuments = DefaultMaxDocuments
	}
	if overflow == "" {
		overflow = DropNewest
	}
	return &Manager{
		ingestor:     ingestor,
		maxDocuments: maxDocuments,
		overflow:     overflow,
	}
}

func (m *Manager) MaxDocuments() int        { return m.maxDocuments }
func (m *Manager) Overflow() OverflowPolicy { return m.overflow }

type SelectResult struct {
	Accepted []Document
	// Dropped names the files that did not fit under the bound, that
	// duplicate a document already uploaded, or that repeat a name earlier
	// in the same selection.
	Dropped []string
}

// Select adds files to the pending set. Every file must be a PDF; a single
// non-PDF rejects the whole selection and leaves the corpus untouched.
func (m *Manager) Select(files []gateway.File) (SelectResult, error) {
	if len(files) == 0 {
		return SelectResult{}, ErrNoDocuments
	}
	for _, f := range files {
		if strings.TrimSpace(f.Name) == "" {
			return SelectResult{}, fmt.Errorf("%w: document name is required", gateway.ErrValidation)
		}
	}
	if err := checkPDFs(files); err != nil {
		logger.Info("Rejected document selection", zap.Error(err))
		return SelectResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overflow == Replace {
		kept := m.docs[:0]
		for _, d := range m.docs {
			if d.State != Selected {
				kept = append(kept, d)
			}
		}
		m.docs = kept
	}

	var result SelectResult
	seen := ds.NewSet[string]()
	for _, f := range files {
		// the backend keys documents by name, so a repeat within one
		// selection is dropped rather than overwriting the first copy
		if seen.Contains(f.Name) {
			result.Dropped = append(result.Dropped, f.Name)
			continue
		}
		seen.Add(f.Name)

		if existing := m.findByName(f.Name); existing != nil {
			if existing.State == Selected {
				existing.Data = append([]byte(nil), f.Data...)
				result.Accepted = append(result.Accepted, *existing)
			} else {
				result.Dropped = append(result.Dropped, f.Name)
			}
			continue
		}
		if len(m.docs) >= m.maxDocuments {
			result.Dropped = append(result.Dropped, f.Name)
			continue
		}
		doc := &Document{
			ID:    uuid.NewString(),
			Name:  f.Name,
			Data:  append([]byte(nil), f.Data...),
			State: Selected,
		}
		m.docs = append(m.docs, doc)
		result.Accepted = append(result.Accepted, *doc)
	}

	if len(result.Dropped) > 0 {
		logger.Info("Some selected documents were dropped",
			zap.Int("max", m.maxDocuments),
			zap.Strings("dropped", result.Dropped))
	}
	return result, nil
}

type UploadResult struct {
	Status   string
	Indexed  []Document
	Returned []string // selected again because the backend did not report them
}

// Summary renders "<file>: <n> chunks; ..." for the indexed documents.
func (r UploadResult) Summary() string {
	parts := make([]string, 0, len(r.Indexed))
	for _, d := range r.Indexed {
		parts = append(parts, fmt.Sprintf("%s: %d chunks", d.Name, d.Chunks))
	}
	return strings.Join(parts, "; ")
}

// Upload sends every selected document in one batch. On failure the batch
// returns to selected so the user can retry; indexed documents are never
// touched.
func (m *Manager) Upload(ctx context.Context) (*UploadResult, error) {
	m.mu.Lock()
	var batch []*Document
	for _, d := range m.docs {
		if d.State == Selected {
			d.State = Indexing
			batch = append(batch, d)
		}
	}
	files := make([]gateway.File, 0, len(batch))
	for _, d := range batch {
		files = append(files, gateway.File{Name: d.Name, Data: d.Data})
	}
	m.mu.Unlock()

	if len(batch) == 0 {
		return nil, ErrNoDocuments
	}

	resp, err := async.Await(async.Go(func() (*gateway.UploadResponse, error) {
		return m.ingestor.Upload(ctx, files)
	}))

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		for _, d := range batch {
			if d.State == Indexing {
				d.State = Selected
			}
		}
		logger.Error("Upload failed, documents returned to selection",
			zap.Int("count", len(batch)), zap.Error(err))
		return nil, err
	}

	chunks := make(map[string]int, len(resp.Files))
	for _, fc := range resp.Files {
		chunks[fc.File] = fc.Chunks
	}

	result := &UploadResult{Status: resp.Status}
	for _, d := range batch {
		n, ok := chunks[d.Name]
		if !ok {
			d.State = Selected
			result.Returned = append(result.Returned, d.Name)
			continue
		}
		d.State = Indexed
		d.Chunks = n
		d.Data = nil
		result.Indexed = append(result.Indexed, *d)
	}

	logger.Info("Documents indexed",
		zap.Int("indexed", len(result.Indexed)),
		zap.Strings("unreported", result.Returned))
	return result, nil
}

// Discard removes a document that was never sent to the backend.
func (m *Manager) Discard(id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, doc := m.find(id)
	if doc == nil {
		return Document{}, fmt.Errorf("%w: %s", ErrUnknownDocument, id)
	}
	switch doc.State {
	case Indexing:
		return *doc, ErrIndexing
	case Indexed:
		return *doc, ErrPersisted
	}

	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	doc.State = Removed
	doc.Data = nil
	return *doc, nil
}

// Remove deletes an indexed document on the backend and then drops it from
// the corpus. Documents still in selection are discarded without a call.
func (m *Manager) Remove(ctx context.Context, id string) (Document, error) {
	doc, err := m.Discard(id)
	if !errors.Is(err, ErrPersisted) {
		return doc, err
	}

	resp, err := async.Await(m.delete(ctx, []string{doc.Name}))
	if err != nil {
		logger.Error("Delete failed, document kept", zap.String("file", doc.Name), zap.Error(err))
		return doc, err
	}
	if resp.Deleted < 1 {
		return doc, fmt.Errorf("%w: %s", ErrNotDeleted, doc.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i, current := m.find(id); current != nil {
		m.docs = append(m.docs[:i], m.docs[i+1:]...)
	}
	doc.State = Removed
	return doc, nil
}

// RemoveAll clears the corpus. Indexed documents are deleted with a single
// backend call; if it fails or comes up short nothing is removed.
func (m *Manager) RemoveAll(ctx context.Context) ([]Document, error) {
	m.mu.Lock()
	var names []string
	for _, d := range m.docs {
		switch d.State {
		case Indexing:
			m.mu.Unlock()
			return nil, ErrIndexing
		case Indexed:
			names = append(names, d.Name)
		}
	}
	m.mu.Unlock()

	if len(names) > 0 {
		resp, err := async.Await(m.delete(ctx, names))
		if err != nil {
			logger.Error("Delete all failed, corpus kept", zap.Int("count", len(names)), zap.Error(err))
			return nil, err
		}
		if resp.Deleted != len(names) {
			return nil, fmt.Errorf("%w: deleted %d of %d", ErrNotDeleted, resp.Deleted, len(names))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := make([]Document, 0, len(m.docs))
	for _, d := range m.docs {
		d.State = Removed
		d.Data = nil
		removed = append(removed, *d)
	}
	m.docs = nil
	return removed, nil
}

func (m *Manager) delete(ctx context.Context, names []string) <-chan async.Result[*gateway.DeleteResponse] {
	return async.Go(func() (*gateway.DeleteResponse, error) {
		return m.ingestor.Delete(ctx, names)
	})
}

// Summarize asks for a summary over the whole indexed corpus.
func (m *Manager) Summarize(ctx context.Context, tone gateway.Tone, language gateway.Language) (string, error) {
	if m.IndexedCount() == 0 {
		return "", ErrEmptyCorpus
	}
	resp, err := async.Await(async.Go(func() (*gateway.SummarizeResponse, error) {
		return m.ingestor.Summarize(ctx, gateway.SummarizeRequest{Tone: tone, Language: language})
	}))
	if err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Documents returns a copy of the corpus in selection order.
func (m *Manager) Documents() []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, *d)
	}
	return out
}

func (m *Manager) Lookup(id string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, d := m.find(id); d != nil {
		return *d, true
	}
	return Document{}, false
}

// LookupName finds a document by file name, which is how the backend keys them.
func (m *Manager) LookupName(name string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.findByName(name); d != nil {
		return *d, true
	}
	return Document{}, false
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *Manager) PendingCount() int { return m.count(Selected) }
func (m *Manager) IndexedCount() int { return m.count(Indexed) }

func (m *Manager) count(state State) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.docs {
		if d.State == state {
			n++
		}
	}
	return n
}

func (m *Manager) find(id string) (int, *Document) {
	for i, d := range m.docs {
		if d.ID == id {
			return i, d
		}
	}
	return -1, nil
}

func (m *Manager) findByName(name string) *Document {
	for _, d := range m.docs {
		if d.Name == name {
			return d
		}
	}
	return nil
}
