package publication

import (
	"fmt"
	"sort"
	"time"

	"github.com/library-api/internal/models"
)

// ScopeKind narrows a query to a relation
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeAuthor
	ScopeTag
)

// Scope restricts the article collection before visibility is applied
type Scope struct {
	Kind ScopeKind
	ID   int64
}

// All is the unscoped collection
func All() Scope { return Scope{Kind: ScopeAll} }

// ByAuthor limits the collection to one author's articles
func ByAuthor(authorID int64) Scope { return Scope{Kind: ScopeAuthor, ID: authorID} }

// ByTag limits the collection to articles related to one tag
func ByTag(tagID int64) Scope { return Scope{Kind: ScopeTag, ID: tagID} }

// Matches reports whether the article belongs to the scope
func (s Scope) Matches(a *models.Article) bool {
	switch s.Kind {
	case ScopeAuthor:
		return a.IsAuthoredBy(s.ID)
	case ScopeTag:
		return a.HasTag(s.ID)
	default:
		return true
	}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeAuthor:
		return fmt.Sprintf("author:%d", s.ID)
	case ScopeTag:
		return fmt.Sprintf("tag:%d", s.ID)
	default:
		return "all"
	}
}

// Ordering is the sort key applied to every list path
type Ordering int

const (
	// OrderNewestFirst sorts by descending pub_date
	OrderNewestFirst Ordering = iota
	// OrderTitle sorts by ascending title
	OrderTitle
)

// ParseOrdering maps a configuration value to an Ordering
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "newest":
		return OrderNewestFirst, nil
	case "title":
		return OrderTitle, nil
	default:
		return 0, fmt.Errorf("unknown article ordering %q", s)
	}
}

// Query is the one visible-article query. Now must be read once per request.
type Query struct {
	Scope Scope
	Order Ordering
	Now   time.Time
}

// Admits reports whether a single article passes the scope and the predicate.
// Detail lookups use this so they agree with Apply.
func (q Query) Admits(a *models.Article) bool {
	return a != nil && q.Scope.Matches(a) && Visible(a, q.Now)
}

// Apply filters the collection down to visible articles in scope and orders them.
// The input slice is not modified.
func (q Query) Apply(articles []*models.Article) []*models.Article {
	out := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if q.Admits(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, q.less(out))
	return out
}

func (q Query) less(s []*models.Article) func(i, j int) bool {
	switch q.Order {
	case OrderTitle:
		return func(i, j int) bool {
			if s[i].Title != s[j].Title {
				return s[i].Title < s[j].Title
			}
			return s[i].ID < s[j].ID
		}
	default:
		return func(i, j int) bool {
			if !s[i].PubDate.Equal(s[j].PubDate) {
				return s[i].PubDate.After(s[j].PubDate)
			}
			return s[i].ID > s[j].ID
		}
	}
}
