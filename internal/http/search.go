package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/database/books"
)

// SearchController handles public catalog search.
type SearchController struct {
	books *books.Repository
}

// NewSearchController creates the controller.
func NewSearchController(bookRepo *books.Repository) *SearchController {
	return &SearchController{books: bookRepo}
}

// Search handles GET /user/search?author=...&title=...
// Both filters are optional substring matches; no filters returns the full
// catalog.
func (s *SearchController) Search(c *gin.Context) {
	author := c.Query("author")
	title := c.Query("title")

	results, err := s.books.Search(author, title)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": results,
		"count": len(results),
	})
}
