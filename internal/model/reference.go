package model

import "time"

// Size and Color are reference rows shown in manual display order.
type Size struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Color struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
