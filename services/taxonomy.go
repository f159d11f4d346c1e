package services

import (
	"strings"

	"blog-hand/models"
)

// CollectCategories sammelt die Kategorien aller Artikel, dedupliziert nach Titel.
// Die Slugs werden aus dem Titel neu abgeleitet, damit sie über Provider hinweg übereinstimmen.
func CollectCategories(articles []*models.Article) []models.Term {
	return collectTerms(articles, func(a *models.Article) []models.Term { return a.Categories })
}

// CollectTags sammelt die Tags aller Artikel, dedupliziert nach Titel.
func CollectTags(articles []*models.Article) []models.Term {
	return collectTerms(articles, func(a *models.Article) []models.Term { return a.Tags })
}

func collectTerms(articles []*models.Article, termsOf func(*models.Article) []models.Term) []models.Term {
	out := []models.Term{}
	seen := make(map[string]bool)
	for _, a := range articles {
		for _, t := range termsOf(a) {
			if t.Title == "" || seen[t.Title] {
				continue
			}
			seen[t.Title] = true
			out = append(out, models.Term{Title: t.Title, Slug: Slugify(t.Title)})
		}
	}
	return out
}

// MatchArticles filtert Artikel per Teilstring-Suche ohne Groß-/Kleinschreibung
// in Titel, Auszug, Kategorie- und Tag-Titeln. Die Reihenfolge bleibt erhalten.
func MatchArticles(articles []*models.Article, q string) []*models.Article {
	needle := strings.ToLower(strings.TrimSpace(q))
	out := []*models.Article{}
	if needle == "" {
		return out
	}
	for _, a := range articles {
		if matchesArticle(a, needle) {
			out = append(out, a)
		}
	}
	return out
}

func matchesArticle(a *models.Article, needle string) bool {
	if contains(a.Title, needle) || contains(a.Excerpt, needle) {
		return true
	}
	for _, c := range a.Categories {
		if contains(c.Title, needle) {
			return true
		}
	}
	for _, t := range a.Tags {
		if contains(t.Title, needle) {
			return true
		}
	}
	return false
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
