package models

// Game is a catalog entry. Optional columns are nil when unset. Img is the
// client's own image URL; CoverKey is the object key of an uploaded cover and
// is managed only by the cover service.
type Game struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Year        *int    `json:"year"`
	Description *string `json:"desc"`
	Img         *string `json:"img"`
	URL         *string `json:"url"`
	Play        *string `json:"play"`
	CoverKey    *string `json:"-"`
}
