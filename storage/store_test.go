package storage

import (
	"testing"

	"blog-hand/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleArticles() []*models.Article {
	return []*models.Article{
		{ID: "1", Slug: "old", PublishedAt: "2023-01-01", Categories: []models.Term{{Title: "Business", Slug: "business"}}},
		{ID: "2", Slug: "new", PublishedAt: "2024-06-01T08:00:00Z", Tags: []models.Term{{Title: "AI", Slug: "ai"}}},
		{ID: "3", Slug: "mid", PublishedAt: "2024-01-01T00:00:00.000Z", Categories: []models.Term{{Title: "Life Style", Slug: "life-style"}}},
	}
}

func TestApplyFilter(t *testing.T) {
	articles := sampleArticles()

	all := ApplyFilter(articles, Filter{})
	assert.Equal(t, []string{"2", "3", "1"}, articleIDs(all))

	assert.Equal(t, []string{"2", "3"}, articleIDs(ApplyFilter(articles, Filter{Limit: 2})))
	assert.Equal(t, []string{"3"}, articleIDs(ApplyFilter(articles, Filter{Slug: "mid"})))
	assert.Equal(t, []string{"1"}, articleIDs(ApplyFilter(articles, Filter{ID: "1"})))

	// Titel ohne Groß-/Kleinschreibung oder Slug
	assert.Equal(t, []string{"3"}, articleIDs(ApplyFilter(articles, Filter{Category: "life style"})))
	assert.Equal(t, []string{"3"}, articleIDs(ApplyFilter(articles, Filter{Category: "life-style"})))
	assert.Equal(t, []string{"2"}, articleIDs(ApplyFilter(articles, Filter{Tag: "ai"})))
	assert.Empty(t, ApplyFilter(articles, Filter{Tag: "ai", Category: "business"}))
}

func TestMongoFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoFilter(Filter{Limit: 3}))
	assert.Equal(t, bson.M{"slug": "hello"}, mongoFilter(Filter{Slug: "hello"}))

	f := mongoFilter(Filter{ID: "x", Category: "C++"})
	and, ok := f["$and"].([]bson.M)
	assert.True(t, ok)
	assert.Len(t, and, 2)
	assert.Equal(t, bson.M{"_id": "x"}, and[0])
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"categories.slug": "C++"},
		{"categories.title": bson.M{"$regex": `^C\+\+$`, "$options": "i"}},
	}}, and[1])
}
