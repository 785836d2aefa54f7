package registry

import "time"

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type Topic struct {
	ID         int       `json:"id"`
	CategoryID int       `json:"categoryId"`
	Name       string    `json:"name"`
	Languages  []string  `json:"languages"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`

	// Populated on reads that enrich with the owning category.
	Category *Category `json:"category,omitempty"`
}

type TopicFilter struct {
	CategoryID int    // 0 = any
	Language   string // "" = any
	Query      string // substring match on topic or category name
}
