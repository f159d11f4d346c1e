package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog-hand/models"
	"blog-hand/providers"
	"blog-hand/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExporter struct {
	exported  [][]*models.Article
	at        time.Time
	exportErr error
	rotateErr error
}

func (f *fakeExporter) Export(_ context.Context, articles []*models.Article, now time.Time) (string, error) {
	if f.exportErr != nil {
		return "", f.exportErr
	}
	f.exported = append(f.exported, articles)
	f.at = now
	return "https://s3.example.com/blog/snapshot.json.gz", nil
}

func (f *fakeExporter) Rotate(context.Context) (int, error) {
	return 2, f.rotateErr
}

func newTestArchiver(p *fakeProvider, store storage.ArticleStore, exp SnapshotExporter) *Archiver {
	live := NewResolver([]providers.Provider{p}, "", zap.NewNop())
	a := NewArchiver(live, store, exp, zap.NewNop())
	a.Now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestArchiver_StoresAndExports(t *testing.T) {
	p := newFake("notion")
	p.results[providers.KindAll] = []*models.Article{article("a", "A", "2024-01-01"), article("b", "B", "2024-02-01")}
	store := storage.NewMemoryStore()
	exp := &fakeExporter{}

	result, err := newTestArchiver(p, store, exp).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Articles)
	assert.Equal(t, 2, result.Stored)
	assert.Equal(t, 2, result.Rotated)
	assert.Equal(t, "https://s3.example.com/blog/snapshot.json.gz", result.ExportLink)
	assert.False(t, result.Skipped)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.Len(t, exp.exported, 1)
	assert.Equal(t, 2024, exp.at.Year())
}

func TestArchiver_EmptyResultKeepsSnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := store.ReplaceAll(context.Background(), []*models.Article{article("old", "Old", "2023-01-01")})
	require.NoError(t, err)

	p := newFake("notion")
	p.err = errors.New("outage")
	exp := &fakeExporter{}

	result, err := newTestArchiver(p, store, exp).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, exp.exported)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestArchiver_Errors(t *testing.T) {
	p := newFake("notion")
	p.results[providers.KindAll] = []*models.Article{article("a", "A", "2024-01-01")}

	t.Run("export failure", func(t *testing.T) {
		_, err := newTestArchiver(p, nil, &fakeExporter{exportErr: errors.New("denied")}).Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("rotation failure is not fatal", func(t *testing.T) {
		result, err := newTestArchiver(p, nil, &fakeExporter{rotateErr: errors.New("list failed")}).Run(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, result.ExportLink)
	})

	t.Run("concurrent run is rejected", func(t *testing.T) {
		a := newTestArchiver(p, nil, nil)
		a.running.Lock()
		defer a.running.Unlock()
		_, err := a.Run(context.Background())
		assert.ErrorIs(t, err, ErrSnapshotRunning)
	})
}
