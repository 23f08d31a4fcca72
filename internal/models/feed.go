package models

// FeedItem is the normalized unit flowing through the aggregation pipeline.
// JSON field names match what the presentation layer already consumes.
type FeedItem struct {
	Title       string   `json:"title,omitempty"`
	Link        string   `json:"link,omitempty"`
	Content     string   `json:"content,omitempty"`
	PublishedAt string   `json:"pubDate,omitempty"`
	Source      string   `json:"source"`
	Score       *float64 `json:"aiScore,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// Classification is the AI service's verdict on a single item. Transient,
// never persisted.
type Classification struct {
	Score      float64 `json:"score"`
	IsBrainRot bool    `json:"is_brain_rot"`
	Reasoning  string  `json:"reasoning"`
}
