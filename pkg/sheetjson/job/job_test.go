package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/config"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/publish"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/source"
)

type fakeSource struct {
	mu      sync.Mutex
	updated map[string]int64
	failing map[string]error
	exports int
}

func (f *fakeSource) GetThread(_ context.Context, id string) (*source.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[id]; err != nil {
		return nil, err
	}
	ts, ok := f.updated[id]
	if !ok {
		return nil, &source.APIError{StatusCode: 404}
	}
	return &source.Thread{Thread: source.ThreadMetadata{
		ID:          id,
		Title:       "Doc " + id,
		Link:        "https://example.com/" + id,
		Type:        source.ThreadTypeSpreadsheet,
		UpdatedUsec: ts,
	}}, nil
}

func (f *fakeSource) ExportSpreadsheet(ctx context.Context, thread *source.Thread, opts sheetjson.Options) (*models.Envelope, error) {
	f.mu.Lock()
	f.exports++
	f.mu.Unlock()

	obj := sheetjson.NewObject()
	obj.Set("id", thread.Thread.ID)
	data, err := sheetjson.Combine([]sheetjson.SheetResult{{Name: "Sheet1", Rows: []any{obj}}}, opts.OutputFormat())
	if err != nil {
		return nil, err
	}
	return &models.Envelope{Metadata: thread.Metadata(), Data: data}, nil
}

func TestRunPublishesChangedDocuments(t *testing.T) {
	dir := t.TempDir()
	pub, err := publish.NewFilePublisher(dir, nil)
	require.NoError(t, err)

	src := &fakeSource{updated: map[string]int64{"a": 10, "b": 20}}
	r := &Runner{
		Source:      src,
		Publisher:   pub,
		Options:     sheetjson.Options{Format: sheetjson.FormatObjectBySheetName},
		Concurrency: 2,
	}
	docs := []config.Document{{ID: "a", Output: "out/a.json"}, {ID: "b", Output: "out/b.json"}}

	results, err := r.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].DocumentID)
	assert.True(t, results[0].Published)
	assert.True(t, results[1].Published)
	assert.Equal(t, int64(20), results[1].Timestamp)

	data, err := os.ReadFile(filepath.Join(dir, "out", "a.json"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"metadata":{"title":"Doc a","link":"https://example.com/a","timestamp":10},"data":{"Sheet1":[{"id":"a"}]}}`,
		string(data))

	// Only b changed upstream.
	src.updated["b"] = 21
	results, err = r.Run(context.Background(), docs)
	require.NoError(t, err)
	assert.False(t, results[0].Published)
	assert.True(t, results[1].Published)
}

func TestRunStopsOnFailure(t *testing.T) {
	pub, err := publish.NewFilePublisher(t.TempDir(), nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	r := &Runner{
		Source:      &fakeSource{updated: map[string]int64{"a": 1}, failing: map[string]error{"bad": boom}},
		Publisher:   pub,
		Concurrency: 1,
	}

	_, err = r.Run(context.Background(), []config.Document{{ID: "bad", Output: "bad.json"}, {ID: "a", Output: "a.json"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "document bad")
}

func TestRunReportsSourceErrors(t *testing.T) {
	pub, err := publish.NewFilePublisher(t.TempDir(), nil)
	require.NoError(t, err)

	r := &Runner{Source: &fakeSource{}, Publisher: pub}
	_, err = r.Run(context.Background(), []config.Document{{ID: "missing", Output: "m.json"}})

	var apiErr *source.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestNewPublisher(t *testing.T) {
	pub, err := NewPublisher(context.Background(), config.PublishConfig{Kind: config.PublisherFile, Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &publish.FilePublisher{}, pub)

	_, err = NewPublisher(context.Background(), config.PublishConfig{Kind: "ftp"}, nil)
	assert.Error(t, err)
}
