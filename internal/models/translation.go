package models

import "time"

// Translation is one dictionary entry for label-key resolution.
type Translation struct {
	Key       string    `db:"key" json:"key"`
	Locale    string    `db:"locale" json:"locale"`
	Text      string    `db:"text" json:"text"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
