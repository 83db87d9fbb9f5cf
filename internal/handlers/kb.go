package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eassist/internal/kb"
)

// KBHandlers serves the troubleshooting knowledge base.
type KBHandlers struct{}

func NewKBHandlers() *KBHandlers { return &KBHandlers{} }

// List returns articles, optionally filtered by ?category=.
func (h *KBHandlers) List(c *gin.Context) {
	articles := kb.List(c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

// Categories returns the distinct article categories.
func (h *KBHandlers) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": kb.Categories()})
}

// Get returns one article by ID.
func (h *KBHandlers) Get(c *gin.Context) {
	article, ok := kb.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// Search matches ?q= against titles, symptoms, and tags.
func (h *KBHandlers) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter required"})
		return
	}
	results := kb.Search(q)
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
