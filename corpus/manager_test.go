package corpus

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

func pdf(name string) gateway.File {
	return gateway.File{Name: name, Data: pdfBytes}
}

// testIngestor records every call and answers with canned responses.
type testIngestor struct {
	uploadCalls    int
	deleteCalls    int
	summarizeCalls int

	uploaded [][]gateway.File
	deleted  [][]string

	uploadResp    *gateway.UploadResponse
	uploadErr     error
	deleteResp    *gateway.DeleteResponse
	deleteErr     error
	summarizeResp *gateway.SummarizeResponse
	summarizeErr  error

	// observe runs inside Upload, while the batch is in flight
	observe func()
}

func (i *testIngestor) Upload(ctx context.Context, files []gateway.File) (*gateway.UploadResponse, error) {
	i.uploadCalls++
	i.uploaded = append(i.uploaded, files)
	if i.observe != nil {
		i.observe()
	}
	if i.uploadErr != nil {
		return nil, i.uploadErr
	}
	if i.uploadResp != nil {
		return i.uploadResp, nil
	}
	resp := &gateway.UploadResponse{Status: "success"}
	for n, f := range files {
		resp.Files = append(resp.Files, gateway.FileChunks{File: f.Name, Chunks: n + 3})
	}
	return resp, nil
}

func (i *testIngestor) Delete(ctx context.Context, fileNames []string) (*gateway.DeleteResponse, error) {
	i.deleteCalls++
	i.deleted = append(i.deleted, fileNames)
	if i.deleteErr != nil {
		return nil, i.deleteErr
	}
	if i.deleteResp != nil {
		return i.deleteResp, nil
	}
	return &gateway.DeleteResponse{Status: "success", Deleted: len(fileNames)}, nil
}

func (i *testIngestor) Summarize(ctx context.Context, req gateway.SummarizeRequest) (*gateway.SummarizeResponse, error) {
	i.summarizeCalls++
	if i.summarizeErr != nil {
		return nil, i.summarizeErr
	}
	return i.summarizeResp, nil
}

func states(docs []Document) map[string]State {
	out := make(map[string]State, len(docs))
	for _, d := range docs {
		out[d.Name] = d.State
	}
	return out
}

func TestSelect(t *testing.T) {
	t.Run("adds PDFs as selected", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 5, DropNewest)

		res, err := m.Select([]gateway.File{pdf("a.pdf"), pdf("b.pdf")})

		require.NoError(t, err)
		assert.Len(t, res.Accepted, 2)
		assert.Empty(t, res.Dropped)
		assert.NotEmpty(t, res.Accepted[0].ID)
		assert.NotEqual(t, res.Accepted[0].ID, res.Accepted[1].ID)
		assert.Equal(t, map[string]State{"a.pdf": Selected, "b.pdf": Selected}, states(m.Documents()))
	})

	t.Run("empty selection", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 5, DropNewest)
		_, err := m.Select(nil)
		assert.ErrorIs(t, err, ErrNoDocuments)
		assert.ErrorIs(t, err, gateway.ErrValidation)
	})

	t.Run("non-PDF rejects the whole selection", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("kept.pdf")})
		require.NoError(t, err)

		_, err = m.Select([]gateway.File{
			pdf("fine.pdf"),
			{Name: "notes.pdf", Data: []byte("just some plain text pretending to be a pdf")},
		})

		assert.ErrorIs(t, err, ErrNotPDF)
		assert.ErrorIs(t, err, gateway.ErrValidation)
		assert.Contains(t, err.Error(), "notes.pdf")
		assert.Equal(t, map[string]State{"kept.pdf": Selected}, states(m.Documents()))
		assert.Zero(t, ing.uploadCalls)
	})

	t.Run("blank name", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 5, DropNewest)
		_, err := m.Select([]gateway.File{{Name: " ", Data: pdfBytes}})
		assert.ErrorIs(t, err, gateway.ErrValidation)
	})

	t.Run("reselecting a pending name refreshes it", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 5, DropNewest)
		first, err := m.Select([]gateway.File{pdf("a.pdf")})
		require.NoError(t, err)

		again, err := m.Select([]gateway.File{pdf("a.pdf")})

		require.NoError(t, err)
		assert.Equal(t, first.Accepted[0].ID, again.Accepted[0].ID)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("repeated name within one selection keeps the first copy", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 5, DropNewest)
		other := append([]byte(nil), pdfBytes...)
		other = append(other, "% second copy\n"...)

		res, err := m.Select([]gateway.File{pdf("a.pdf"), {Name: "a.pdf", Data: other}, pdf("b.pdf")})

		require.NoError(t, err)
		require.Len(t, res.Accepted, 2)
		assert.Equal(t, "a.pdf", res.Accepted[0].Name)
		assert.Equal(t, "b.pdf", res.Accepted[1].Name)
		assert.Equal(t, []string{"a.pdf"}, res.Dropped)

		doc, ok := m.LookupName("a.pdf")
		require.True(t, ok)
		assert.Equal(t, pdfBytes, doc.Data)
		assert.Equal(t, 2, m.Len())
	})
}

func TestSelectNeverExceedsBound(t *testing.T) {
	for _, policy := range []OverflowPolicy{DropNewest, Replace} {
		for bound := 1; bound <= 5; bound++ {
			for batch := 1; batch <= 8; batch++ {
				t.Run(fmt.Sprintf("%s/bound=%d/batch=%d", policy, bound, batch), func(t *testing.T) {
					m := NewManager(&testIngestor{}, bound, policy)
					for round := 0; round < 3; round++ {
						files := make([]gateway.File, batch)
						for i := range files {
							files[i] = pdf(fmt.Sprintf("r%d-%d.pdf", round, i))
						}
						_, err := m.Select(files)
						require.NoError(t, err)
						assert.LessOrEqual(t, m.Len(), bound)
					}
				})
			}
		}
	}
}

func TestSelectOverflowPolicies(t *testing.T) {
	t.Run("drop newest keeps existing documents", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 2, DropNewest)
		_, err := m.Select([]gateway.File{pdf("old.pdf")})
		require.NoError(t, err)

		res, err := m.Select([]gateway.File{pdf("new1.pdf"), pdf("new2.pdf")})

		require.NoError(t, err)
		assert.Equal(t, []string{"new2.pdf"}, res.Dropped)
		assert.Equal(t, map[string]State{"old.pdf": Selected, "new1.pdf": Selected}, states(m.Documents()))
	})

	t.Run("replace swaps pending documents but keeps indexed ones", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 2, Replace)
		_, err := m.Select([]gateway.File{pdf("indexed.pdf")})
		require.NoError(t, err)
		_, err = m.Upload(context.Background())
		require.NoError(t, err)
		_, err = m.Select([]gateway.File{pdf("pending.pdf")})
		require.NoError(t, err)

		res, err := m.Select([]gateway.File{pdf("fresh1.pdf"), pdf("fresh2.pdf")})

		require.NoError(t, err)
		assert.Equal(t, []string{"fresh2.pdf"}, res.Dropped)
		assert.Equal(t, map[string]State{"indexed.pdf": Indexed, "fresh1.pdf": Selected}, states(m.Documents()))
	})

	t.Run("single document variant", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 1, Replace)
		_, err := m.Select([]gateway.File{pdf("first.pdf")})
		require.NoError(t, err)
		_, err = m.Select([]gateway.File{pdf("second.pdf")})
		require.NoError(t, err)

		assert.Equal(t, map[string]State{"second.pdf": Selected}, states(m.Documents()))
	})
}

func TestUpload(t *testing.T) {
	t.Run("marks the batch indexed with chunk counts", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("a.pdf"), pdf("b.pdf")})
		require.NoError(t, err)

		ing.observe = func() {
			assert.Equal(t, map[string]State{"a.pdf": Indexing, "b.pdf": Indexing}, states(m.Documents()))
		}
		res, err := m.Upload(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, ing.uploadCalls)
		assert.Len(t, ing.uploaded[0], 2)
		assert.Equal(t, "a.pdf: 3 chunks; b.pdf: 4 chunks", res.Summary())
		assert.Equal(t, 2, m.IndexedCount())
		for _, d := range m.Documents() {
			assert.Nil(t, d.Data, "indexed documents drop their payload")
		}
	})

	t.Run("nothing selected", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Upload(context.Background())
		assert.ErrorIs(t, err, ErrNoDocuments)
		assert.Zero(t, ing.uploadCalls)
	})

	t.Run("failure reverts the batch and keeps indexed documents", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("safe.pdf")})
		require.NoError(t, err)
		_, err = m.Upload(context.Background())
		require.NoError(t, err)

		_, err = m.Select([]gateway.File{pdf("retry.pdf")})
		require.NoError(t, err)
		ing.uploadErr = &gateway.Error{Op: gateway.OpUpload, StatusCode: 500, Message: "Error processing file"}

		_, err = m.Upload(context.Background())

		require.Error(t, err)
		assert.Equal(t, "Server returned 500: Error processing file", err.Error())
		assert.Equal(t, map[string]State{"safe.pdf": Indexed, "retry.pdf": Selected}, states(m.Documents()))
		assert.Equal(t, []gateway.File{pdf("retry.pdf")}, ing.uploaded[1], "only the pending document is resent")

		retried, ok := m.LookupName("retry.pdf")
		require.True(t, ok)
		assert.Equal(t, pdfBytes, retried.Data, "payload kept for retry")
	})

	t.Run("documents missing from the response stay selected", func(t *testing.T) {
		ing := &testIngestor{uploadResp: &gateway.UploadResponse{
			Status: "success",
			Files:  []gateway.FileChunks{{File: "a.pdf", Chunks: 7}},
		}}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("a.pdf"), pdf("b.pdf")})
		require.NoError(t, err)

		res, err := m.Upload(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"b.pdf"}, res.Returned)
		assert.Equal(t, map[string]State{"a.pdf": Indexed, "b.pdf": Selected}, states(m.Documents()))
	})
}

func TestRemove(t *testing.T) {
	t.Run("selected document is removed without a call", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		res, err := m.Select([]gateway.File{pdf("a.pdf")})
		require.NoError(t, err)

		doc, err := m.Remove(context.Background(), res.Accepted[0].ID)

		require.NoError(t, err)
		assert.Equal(t, Removed, doc.State)
		assert.Zero(t, ing.deleteCalls)
		assert.Zero(t, m.Len())
	})

	t.Run("indexed document is deleted on the backend", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		res, err := m.Select([]gateway.File{pdf("a.pdf")})
		require.NoError(t, err)
		_, err = m.Upload(context.Background())
		require.NoError(t, err)

		_, err = m.Discard(res.Accepted[0].ID)
		assert.ErrorIs(t, err, ErrPersisted)

		doc, err := m.Remove(context.Background(), res.Accepted[0].ID)

		require.NoError(t, err)
		assert.Equal(t, Removed, doc.State)
		assert.Equal(t, [][]string{{"a.pdf"}}, ing.deleted)
		assert.Zero(t, m.Len())
	})

	t.Run("failed delete keeps the document indexed", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		res, err := m.Select([]gateway.File{pdf("a.pdf")})
		require.NoError(t, err)
		_, err = m.Upload(context.Background())
		require.NoError(t, err)

		ing.deleteErr = &gateway.Error{Op: gateway.OpDelete, Message: "connection refused"}
		_, err = m.Remove(context.Background(), res.Accepted[0].ID)
		assert.True(t, gateway.IsTransport(err))

		ing.deleteErr = nil
		ing.deleteResp = &gateway.DeleteResponse{Status: "success", Deleted: 0}
		_, err = m.Remove(context.Background(), res.Accepted[0].ID)
		assert.ErrorIs(t, err, ErrNotDeleted)

		assert.Equal(t, map[string]State{"a.pdf": Indexed}, states(m.Documents()))
	})

	t.Run("document being indexed cannot be removed", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		res, err := m.Select([]gateway.File{pdf("a.pdf")})
		require.NoError(t, err)

		var removeErr error
		ing.observe = func() {
			_, removeErr = m.Remove(context.Background(), res.Accepted[0].ID)
		}
		_, err = m.Upload(context.Background())

		require.NoError(t, err)
		assert.ErrorIs(t, removeErr, ErrIndexing)
		assert.ErrorIs(t, removeErr, lifecycle.ErrStateConflict)
		assert.Equal(t, 1, m.IndexedCount())
	})

	t.Run("unknown id", func(t *testing.T) {
		m := NewManager(&testIngestor{}, 5, DropNewest)
		_, err := m.Remove(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrUnknownDocument)
	})
}

func TestRemoveAll(t *testing.T) {
	setup := func(t *testing.T, ing *testIngestor) *Manager {
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("a.pdf"), pdf("b.pdf")})
		require.NoError(t, err)
		_, err = m.Upload(context.Background())
		require.NoError(t, err)
		_, err = m.Select([]gateway.File{pdf("pending.pdf")})
		require.NoError(t, err)
		return m
	}

	t.Run("one call clears everything", func(t *testing.T) {
		ing := &testIngestor{}
		m := setup(t, ing)

		removed, err := m.RemoveAll(context.Background())

		require.NoError(t, err)
		assert.Len(t, removed, 3)
		assert.Equal(t, [][]string{{"a.pdf", "b.pdf"}}, ing.deleted)
		assert.Zero(t, m.Len())
	})

	t.Run("short count keeps the corpus", func(t *testing.T) {
		ing := &testIngestor{deleteResp: &gateway.DeleteResponse{Status: "success", Deleted: 1}}
		m := setup(t, ing)

		_, err := m.RemoveAll(context.Background())

		assert.ErrorIs(t, err, ErrNotDeleted)
		assert.Equal(t, 3, m.Len())
	})

	t.Run("only pending documents needs no call", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("a.pdf")})
		require.NoError(t, err)

		_, err = m.RemoveAll(context.Background())

		require.NoError(t, err)
		assert.Zero(t, ing.deleteCalls)
		assert.Zero(t, m.Len())
	})
}

func TestSummarize(t *testing.T) {
	t.Run("empty corpus is rejected locally", func(t *testing.T) {
		ing := &testIngestor{}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("pending.pdf")})
		require.NoError(t, err)

		_, err = m.Summarize(context.Background(), gateway.ToneFormal, gateway.LanguageEnglish)

		assert.ErrorIs(t, err, ErrEmptyCorpus)
		assert.ErrorIs(t, err, gateway.ErrValidation)
		assert.Zero(t, ing.summarizeCalls)
	})

	t.Run("summarizes the indexed corpus", func(t *testing.T) {
		ing := &testIngestor{summarizeResp: &gateway.SummarizeResponse{Reply: "The handbook covers leave."}}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("handbook.pdf")})
		require.NoError(t, err)
		_, err = m.Upload(context.Background())
		require.NoError(t, err)

		reply, err := m.Summarize(context.Background(), gateway.ToneFormal, gateway.LanguageEnglish)

		require.NoError(t, err)
		assert.Equal(t, "The handbook covers leave.", reply)
		assert.Equal(t, 1, ing.summarizeCalls)
	})

	t.Run("backend error surfaces", func(t *testing.T) {
		boom := errors.New("boom")
		ing := &testIngestor{summarizeErr: boom}
		m := NewManager(ing, 5, DropNewest)
		_, err := m.Select([]gateway.File{pdf("handbook.pdf")})
		require.NoError(t, err)
		_, err = m.Upload(context.Background())
		require.NoError(t, err)

		_, err = m.Summarize(context.Background(), gateway.ToneFormal, gateway.LanguageEnglish)
		assert.ErrorIs(t, err, boom)
	})
}

func TestParseOverflowPolicy(t *testing.T) {
	p, err := ParseOverflowPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DropNewest, p)

	p, err = ParseOverflowPolicy(" REPLACE ")
	require.NoError(t, err)
	assert.Equal(t, Replace, p)

	_, err = ParseOverflowPolicy("evict_oldest")
	assert.ErrorIs(t, err, gateway.ErrValidation)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF(pdfBytes))
	assert.False(t, IsPDF([]byte("hello")))
	assert.False(t, IsPDF(nil))
}
