// Package models holds the client-side view of server resources.
package models

import (
	"fmt"
	"strings"
)

// Game mirrors a catalog entry as returned by GET /api/games.
type Game struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Year        *int    `json:"year,omitempty"`
	Description *string `json:"desc,omitempty"`
	Img         *string `json:"img,omitempty"`
	URL         *string `json:"url,omitempty"`
	Play        *string `json:"play,omitempty"`
}

// String renders a one-line summary, e.g. "#3 Tetris (1984)".
func (g *Game) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", g.ID, g.Name)
	if g.Year != nil {
		fmt.Fprintf(&b, " (%d)", *g.Year)
	}
	if g.URL != nil && *g.URL != "" {
		fmt.Fprintf(&b, " %s", *g.URL)
	}
	return b.String()
}
