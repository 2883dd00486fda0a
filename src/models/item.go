package models

import "time"

// Item is one linked institution connection. AccessToken is stored
// encrypted; Cursor is nil until the first sync page commits.
type Item struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ItemID          string    `json:"item_id"`
	AccessToken     string    `json:"-"`
	InstitutionID   string    `json:"institution_id"`
	InstitutionName string    `json:"institution_name"`
	Cursor          *string   `json:"cursor,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
