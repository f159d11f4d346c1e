package archive

import (
	"context"
	"errors"
	"testing"

	"blog-hand/models"
	"blog-hand/providers"
	"blog-hand/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct {
	storage.MemoryStore
}

func (*failingStore) List(context.Context, storage.Filter) ([]*models.Article, error) {
	return nil, errors.New("connection refused")
}

func seededProvider(t *testing.T) *Provider {
	t.Helper()
	store := storage.NewMemoryStore()
	_, err := store.ReplaceAll(context.Background(), []*models.Article{
		{ID: "a", Slug: "first", PublishedAt: "2024-01-01", Source: "notion", Tags: []models.Term{{Title: "Go", Slug: "go"}}},
		{ID: "b", Slug: "second", PublishedAt: "2024-02-01", Source: "sanity", Categories: []models.Term{{Title: "Tech", Slug: "tech"}}},
		{ID: "c", Slug: "third", PublishedAt: "2024-03-01", Source: "notion"},
	})
	require.NoError(t, err)
	return NewProvider(store, zap.NewNop())
}

func ids(articles []*models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func TestProvider_Query(t *testing.T) {
	p := seededProvider(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		query providers.Query
		want  []string
	}{
		{"all newest first", providers.Query{Kind: providers.KindAll}, []string{"c", "b", "a"}},
		{"slug", providers.Query{Kind: providers.KindSlug, Slug: "second"}, []string{"b"}},
		{"category by title", providers.Query{Kind: providers.KindCategory, Category: "tech"}, []string{"b"}},
		{"tag", providers.Query{Kind: providers.KindTag, Tag: "Go"}, []string{"a"}},
		{"recent", providers.Query{Kind: providers.KindRecent, Limit: 2}, []string{"c", "b"}},
		{"by id", providers.Query{Kind: providers.KindByID, ID: "a"}, []string{"a"}},
		{"missing slug", providers.Query{Kind: providers.KindSlug, Slug: "nope"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			articles, err := p.Query(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(articles))
			for _, a := range articles {
				assert.Equal(t, ProviderName, a.Source)
			}
		})
	}
}

func TestProvider_DoesNotMutateSnapshot(t *testing.T) {
	p := seededProvider(t)
	_, err := p.Query(context.Background(), providers.Query{Kind: providers.KindAll})
	require.NoError(t, err)

	stored, err := p.Store.List(context.Background(), storage.Filter{ID: "b"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "sanity", stored[0].Source)
}

func TestProvider_Errors(t *testing.T) {
	p := NewProvider(&failingStore{}, zap.NewNop())
	_, err := p.Query(context.Background(), providers.Query{Kind: providers.KindAll})
	assert.Error(t, err)

	_, err = seededProvider(t).Query(context.Background(), providers.Query{Kind: providers.KindByID})
	assert.Error(t, err)
}
