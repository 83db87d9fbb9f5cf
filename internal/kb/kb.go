// Package kb serves the static troubleshooting knowledge base.
package kb

import (
	"sort"
	"strings"
)

// Article is one knowledge-base entry.
type Article struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Symptoms []string `json:"symptoms"`
	Solution string   `json:"solution"`
	Tags     []string `json:"tags"`
}

// SearchResult pairs an article with its match relevance.
type SearchResult struct {
	Article
	Relevance int `json:"relevance"`
}

// List returns all articles, optionally filtered by category
// (case-insensitive).
func List(category string) []Article {
	if category == "" {
		return articles
	}
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if strings.EqualFold(a.Category, category) {
			out = append(out, a)
		}
	}
	return out
}

// Categories returns the distinct article categories.
func Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range articles {
		if _, ok := seen[a.Category]; !ok {
			seen[a.Category] = struct{}{}
			out = append(out, a.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Get returns the article with the given ID.
func Get(id string) (*Article, bool) {
	for i := range articles {
		if articles[i].ID == id {
			return &articles[i], true
		}
	}
	return nil, false
}

// Search matches the query against titles, symptoms, and tags. Title matches
// weigh heaviest; results come back most relevant first.
func Search(query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	terms := strings.Fields(query)

	var out []SearchResult
	for _, a := range articles {
		score := 0
		title := strings.ToLower(a.Title)
		for _, term := range terms {
			if strings.Contains(title, term) {
				score += 3
			}
			for _, s := range a.Symptoms {
				if strings.Contains(strings.ToLower(s), term) {
					score += 2
				}
			}
			for _, t := range a.Tags {
				if strings.Contains(strings.ToLower(t), term) {
					score++
				}
			}
		}
		if score > 0 {
			out = append(out, SearchResult{Article: a, Relevance: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Relevance > out[j].Relevance })
	return out
}
