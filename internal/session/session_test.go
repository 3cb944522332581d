package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/ingestion"
	"docqa/internal/models"
	"docqa/internal/retrieval"
)

// fakeSemanticIndex keeps chunks in memory and serves them back in insertion
// order, standing in for the vector store
type fakeSemanticIndex struct {
	chunks  []models.Chunk
	initErr error
	addErr  error
	dropped bool
}

func (f *fakeSemanticIndex) Init(ctx context.Context) error {
	return f.initErr
}

func (f *fakeSemanticIndex) Add(ctx context.Context, chunks []models.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeSemanticIndex) Drop(ctx context.Context) error {
	f.dropped = true
	return nil
}

func (f *fakeSemanticIndex) Query(ctx context.Context, text string, k int) ([]models.Chunk, error) {
	if len(f.chunks) > k {
		return append([]models.Chunk(nil), f.chunks[:k]...), nil
	}
	return append([]models.Chunk(nil), f.chunks...), nil
}

func (f *fakeSemanticIndex) QueryWithDistances(ctx context.Context, text string, k int) ([]models.ScoredChunk, error) {
	chunks, _ := f.Query(ctx, text, k)
	out := make([]models.ScoredChunk, len(chunks))
	for i, c := range chunks {
		d := 0.1 * float64(i+1)
		out[i] = models.ScoredChunk{Chunk: c, Score: &d}
	}
	return out, nil
}

// fakeLoader serves canned pages per path
type fakeLoader struct {
	pages map[string][]models.PageRecord
}

func (f *fakeLoader) Load(path string) ([]models.PageRecord, error) {
	pages, ok := f.pages[path]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", path)
	}
	return pages, nil
}

// fakeLLM returns a fixed answer
type fakeLLM struct {
	answer string
	err    error
	calls  int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testDeps(t *testing.T, loader ingestion.Loader, llm *fakeLLM, semantic *fakeSemanticIndex) Deps {
	t.Helper()
	return Deps{
		NewSemanticIndex: func(sessionID string) SemanticIndex { return semantic },
		Loader:           loader,
		Splitter:         ingestion.NewSplitter(1000, 200),
		LLM:              llm,
		Retrieval:        retrieval.Config{TopK: 5, SemanticWeight: 0.5},
		UploadDir:        t.TempDir(),
		Logger:           testLogger(),
	}
}

func newTestSession(t *testing.T, loader ingestion.Loader, llm *fakeLLM, semantic *fakeSemanticIndex) *Session {
	t.Helper()
	registry := NewRegistry(testDeps(t, loader, llm, semantic))
	sess, err := registry.Create(context.Background())
	require.NoError(t, err)
	return sess
}

func singleDocLoader(path, text string) *fakeLoader {
	return &fakeLoader{pages: map[string][]models.PageRecord{
		path: {{Text: text, Page: 0}},
	}}
}

func TestSession_AskBeforeUpload(t *testing.T) {
	sess := newTestSession(t, &fakeLoader{}, &fakeLLM{answer: "unused"}, &fakeSemanticIndex{})

	resp := sess.Ask(context.Background(), "What does the report say?")

	assert.Equal(t, "Please upload documents first.", resp.Answer)
	assert.Equal(t, "", resp.References)
	assert.Equal(t, 0, resp.ChunksUsed)
	assert.Equal(t, []string{}, resp.Sources)
	assert.Empty(t, sess.History())
}

func TestSession_AddDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests and reports totals", func(t *testing.T) {
		semantic := &fakeSemanticIndex{}
		loader := singleDocLoader("/tmp/report.pdf", "The annual revenue grew by ten percent.")
		sess := newTestSession(t, loader, &fakeLLM{answer: "a"}, semantic)

		result, err := sess.AddDocuments(ctx, []string{"/tmp/report.pdf"})

		require.NoError(t, err)
		assert.Equal(t, []string{"report.pdf"}, result.Documents)
		assert.Equal(t, 1, result.TotalChunks)
		assert.Len(t, semantic.chunks, 1)
	})

	t.Run("repeated uploads accumulate with continuing chunk ids", func(t *testing.T) {
		semantic := &fakeSemanticIndex{}
		loader := &fakeLoader{pages: map[string][]models.PageRecord{
			"/tmp/a.pdf": {{Text: "Alpha document content.", Page: 0}},
			"/tmp/b.pdf": {{Text: "Beta document content.", Page: 0}},
		}}
		sess := newTestSession(t, loader, &fakeLLM{answer: "a"}, semantic)

		first, err := sess.AddDocuments(ctx, []string{"/tmp/a.pdf"})
		require.NoError(t, err)
		assert.Equal(t, 1, first.TotalChunks)

		second, err := sess.AddDocuments(ctx, []string{"/tmp/b.pdf"})
		require.NoError(t, err)
		assert.Equal(t, 2, second.TotalChunks)
		assert.Equal(t, []string{"a.pdf", "b.pdf"}, second.Documents)

		require.Len(t, semantic.chunks, 2)
		assert.Equal(t, "a.pdf_chunk_0", semantic.chunks[0].Metadata.ChunkID)
		assert.Equal(t, "b.pdf_chunk_1", semantic.chunks[1].Metadata.ChunkID)
	})

	t.Run("vector store failure aborts the upload", func(t *testing.T) {
		semantic := &fakeSemanticIndex{addErr: fmt.Errorf("chroma unreachable")}
		loader := singleDocLoader("/tmp/report.pdf", "Some content.")
		sess := newTestSession(t, loader, &fakeLLM{answer: "a"}, semantic)

		_, err := sess.AddDocuments(ctx, []string{"/tmp/report.pdf"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to index documents")
		assert.Empty(t, sess.Documents())

		// The session still answers with the no-documents message
		resp := sess.Ask(ctx, "anything")
		assert.Equal(t, "Please upload documents first.", resp.Answer)
	})

	t.Run("no loadable documents is an error", func(t *testing.T) {
		sess := newTestSession(t, &fakeLoader{}, &fakeLLM{answer: "a"}, &fakeSemanticIndex{})

		_, err := sess.AddDocuments(ctx, []string{"/tmp/missing.pdf"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no documents were successfully loaded")
	})
}

func TestSession_AskAfterUpload(t *testing.T) {
	ctx := context.Background()

	semantic := &fakeSemanticIndex{}
	loader := singleDocLoader("/tmp/report.pdf", "The annual revenue grew by ten percent.")
	llm := &fakeLLM{answer: "Revenue grew by ten percent [1]."}
	sess := newTestSession(t, loader, llm, semantic)

	_, err := sess.AddDocuments(ctx, []string{"/tmp/report.pdf"})
	require.NoError(t, err)

	resp := sess.Ask(ctx, "How did revenue change?")

	assert.Equal(t, "Revenue grew by ten percent [1].", resp.Answer)
	assert.Contains(t, resp.References, "[1] report.pdf, Page 1")
	assert.Equal(t, []string{"report.pdf"}, resp.Sources)
	assert.Greater(t, resp.ChunksUsed, 0)

	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "How did revenue change?", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestSession_HistoryLifecycle(t *testing.T) {
	ctx := context.Background()

	semantic := &fakeSemanticIndex{}
	loader := singleDocLoader("/tmp/doc.pdf", "Interesting facts about turtles.")
	sess := newTestSession(t, loader, &fakeLLM{answer: "Turtles are reptiles."}, semantic)

	_, err := sess.AddDocuments(ctx, []string{"/tmp/doc.pdf"})
	require.NoError(t, err)

	sess.Ask(ctx, "What are turtles?")
	sess.Ask(ctx, "Tell me more.")
	assert.Len(t, sess.History(), 4)

	t.Run("further uploads keep the conversation", func(t *testing.T) {
		loader.pages["/tmp/more.pdf"] = []models.PageRecord{{Text: "Even more turtle facts.", Page: 0}}

		_, err := sess.AddDocuments(ctx, []string{"/tmp/more.pdf"})
		require.NoError(t, err)

		assert.Len(t, sess.History(), 4)
	})

	t.Run("clear removes history but keeps documents", func(t *testing.T) {
		sess.ClearChat()

		assert.Empty(t, sess.History())
		assert.Equal(t, []string{"doc.pdf", "more.pdf"}, sess.Documents())

		// Still answerable after the reset
		resp := sess.Ask(ctx, "What are turtles?")
		assert.Equal(t, "Turtles are reptiles.", resp.Answer)
	})
}

func TestSession_Info(t *testing.T) {
	ctx := context.Background()

	semantic := &fakeSemanticIndex{}
	loader := singleDocLoader("/tmp/doc.pdf", "Contents of the document.")
	sess := newTestSession(t, loader, &fakeLLM{answer: "a"}, semantic)

	before := sess.Info()
	assert.Equal(t, sess.ID, before.SessionID)
	assert.False(t, before.HasIndex)
	assert.Empty(t, before.Documents)
	assert.Equal(t, 0, before.ChatHistoryLength)

	_, err := sess.AddDocuments(ctx, []string{"/tmp/doc.pdf"})
	require.NoError(t, err)
	sess.Ask(ctx, "Question?")

	after := sess.Info()
	assert.True(t, after.HasIndex)
	assert.Equal(t, []string{"doc.pdf"}, after.Documents)
	assert.Equal(t, 2, after.ChatHistoryLength)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		registry := NewRegistry(testDeps(t, &fakeLoader{}, &fakeLLM{}, &fakeSemanticIndex{}))

		sess, err := registry.Create(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, sess.ID)
		assert.DirExists(t, sess.UploadDir())

		got, err := registry.Get(sess.ID)
		require.NoError(t, err)
		assert.Same(t, sess, got)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("get unknown id", func(t *testing.T) {
		registry := NewRegistry(testDeps(t, &fakeLoader{}, &fakeLLM{}, &fakeSemanticIndex{}))

		_, err := registry.Get("nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete tears everything down", func(t *testing.T) {
		semantic := &fakeSemanticIndex{}
		registry := NewRegistry(testDeps(t, &fakeLoader{}, &fakeLLM{}, semantic))

		sess, err := registry.Create(ctx)
		require.NoError(t, err)
		dir := sess.UploadDir()

		require.NoError(t, registry.Delete(ctx, sess.ID))

		assert.True(t, semantic.dropped)
		assert.NoDirExists(t, dir)
		_, err = registry.Get(sess.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete unknown id", func(t *testing.T) {
		registry := NewRegistry(testDeps(t, &fakeLoader{}, &fakeLLM{}, &fakeSemanticIndex{}))
		err := registry.Delete(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("failed index init rolls back the upload dir", func(t *testing.T) {
		semantic := &fakeSemanticIndex{initErr: fmt.Errorf("collection create failed")}
		deps := testDeps(t, &fakeLoader{}, &fakeLLM{}, semantic)
		registry := NewRegistry(deps)

		_, err := registry.Create(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize vector index")
		assert.Equal(t, 0, registry.Len())

		entries, err := os.ReadDir(deps.UploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("cleanup all", func(t *testing.T) {
		registry := NewRegistry(testDeps(t, &fakeLoader{}, &fakeLLM{}, &fakeSemanticIndex{}))

		for i := 0; i < 3; i++ {
			_, err := registry.Create(ctx)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, registry.Len())

		registry.CleanupAll(ctx)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		deps := testDeps(t, singleDocLoader("/tmp/doc.pdf", "Shared file content."), &fakeLLM{answer: "a"}, &fakeSemanticIndex{})
		// Each session gets its own semantic index instance
		deps.NewSemanticIndex = func(sessionID string) SemanticIndex { return &fakeSemanticIndex{} }
		registry := NewRegistry(deps)

		one, err := registry.Create(ctx)
		require.NoError(t, err)
		two, err := registry.Create(ctx)
		require.NoError(t, err)

		_, err = one.AddDocuments(ctx, []string{"/tmp/doc.pdf"})
		require.NoError(t, err)

		assert.Equal(t, []string{"doc.pdf"}, one.Documents())
		assert.Empty(t, two.Documents())

		resp := two.Ask(ctx, "anything")
		assert.Equal(t, "Please upload documents first.", resp.Answer)
	})
}

func TestRegistry_UploadDirLayout(t *testing.T) {
	deps := testDeps(t, &fakeLoader{}, &fakeLLM{}, &fakeSemanticIndex{})
	registry := NewRegistry(deps)

	sess, err := registry.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(deps.UploadDir, sess.ID), sess.UploadDir())
}
