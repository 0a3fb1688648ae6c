package model

import "time"

// ProduceItem represents a record in the produce_items table.
type ProduceItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PLUCode       string    `json:"plu_code"`
	Description   string    `json:"description"`
	PhotoURL      *string   `json:"photo_url"`
	SearchedCount int64     `json:"searched_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasPhoto reports whether the item carries a stored photo.
func (p *ProduceItem) HasPhoto() bool {
	return p.PhotoURL != nil && *p.PhotoURL != ""
}
