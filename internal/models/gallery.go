package models

import "time"

// DisplayDateLayout is the short date shown under gallery cards
const DisplayDateLayout = "1/2/2006"

// GalleryItem represents a shared image in the community gallery
type GalleryItem struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Image       []byte    `json:"-"`
	ContentType string    `json:"contentType"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"-"`
}

// DisplayDate formats CreatedAt for the gallery card
func (g GalleryItem) DisplayDate() string {
	return g.CreatedAt.Local().Format(DisplayDateLayout)
}
