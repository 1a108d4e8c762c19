// Package publication decides which articles readers may see.
//
// Every read path (article list, article detail, author-scoped and tag-scoped
// listings) goes through Query so that no two entry points can disagree about
// an article's visibility.
package publication

import (
	"time"

	"github.com/library-api/internal/models"
)

// IsVisible reports whether an article with these fields is published at now.
//
// Only the exact empty string counts as missing for title and content.
// The pub_date bound is inclusive: an article dated exactly now is visible.
func IsVisible(title, content string, tagCount int, pubDate, now time.Time) bool {
	return title != "" &&
		content != "" &&
		tagCount > 0 &&
		!pubDate.After(now)
}

// Visible applies IsVisible to a stored article
func Visible(a *models.Article, now time.Time) bool {
	if a == nil {
		return false
	}
	return IsVisible(a.Title, a.Content, a.TagCount(), a.PubDate, now)
}
