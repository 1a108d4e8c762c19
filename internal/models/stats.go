package models

// Stats is a snapshot of stored record counts
type Stats struct {
	Articles        int `json:"articles"`
	VisibleArticles int `json:"visible_articles"`
	Tags            int `json:"tags"`
	Authors         int `json:"authors"`
}
