package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishedTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-14T09:26:53.589Z", time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)},
		{"2024-01-02T10:00:00Z", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"2024-01-02T10:00", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"gestern", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		a := &Article{PublishedAt: tt.in}
		assert.True(t, tt.want.Equal(a.PublishedTime()), tt.in)
	}
}

func TestTermMatches(t *testing.T) {
	term := Term{Title: "Life Style", Slug: "life-style"}
	assert.True(t, term.Matches("life-style"))
	assert.True(t, term.Matches("life style"))
	assert.False(t, term.Matches("Life-Style"))
	assert.False(t, term.Matches("life"))
}

func TestHasCategoryAndTag(t *testing.T) {
	a := &Article{
		Categories: []Term{{Title: "Business", Slug: "business"}},
		Tags:       []Term{{Title: "Go", Slug: "go"}},
	}
	assert.True(t, a.HasCategory("BUSINESS"))
	assert.False(t, a.HasCategory("go"))
	assert.True(t, a.HasTag("go"))
	assert.False(t, (&Article{}).HasTag("go"))
}
