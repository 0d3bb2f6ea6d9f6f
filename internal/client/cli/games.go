package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gameshelf/internal/client/models"
)

func (a *App) Games(ctx context.Context) error {
	games, err := a.api.ListGames(ctx)
	if err != nil {
		return a.report("Listing games", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(a.out, "No games yet")
		return nil
	}
	for _, g := range games {
		fmt.Fprintln(a.out, g.String())
	}
	return nil
}

func (a *App) AddGame(ctx context.Context) error {
	g, err := a.readGame()
	if err != nil {
		return a.report("Adding game", err)
	}

	id, err := a.api.AddGame(ctx, g)
	if err != nil {
		return a.report("Adding game", err)
	}
	fmt.Fprintf(a.out, "Game added with id %d\n", id)
	return nil
}

// SetCover uploads an image file as the cover of an existing game.
func (a *App) SetCover(ctx context.Context) error {
	id, err := a.readGameID()
	if err != nil {
		return a.report("Setting cover", err)
	}
	path, err := getSimpleText(a.reader, "Image file path", a.out)
	if err != nil {
		return a.report("Setting cover", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return a.report("Setting cover", err)
	}

	key, err := a.api.UploadCover(ctx, id, data)
	if err != nil {
		return a.report("Setting cover", err)
	}
	fmt.Fprintf(a.out, "Cover stored as %s\n", key)
	return nil
}

// Cover prints a temporary download link for a game's cover.
func (a *App) Cover(ctx context.Context) error {
	id, err := a.readGameID()
	if err != nil {
		return a.report("Getting cover", err)
	}

	url, err := a.api.CoverURL(ctx, id)
	if err != nil {
		return a.report("Getting cover", err)
	}
	if url == "" {
		fmt.Fprintln(a.out, "No cover yet")
		return nil
	}
	fmt.Fprintln(a.out, url)
	return nil
}

func (a *App) readGameID() (int64, error) {
	id, err := GetOptionalInt(a.reader, "Game id", a.out)
	if err != nil {
		return 0, err
	}
	if id == nil || *id <= 0 {
		return 0, errors.New("game id is required")
	}
	return int64(*id), nil
}

func (a *App) readGame() (*models.Game, error) {
	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("name is required")
	}

	g := &models.Game{Name: name}
	if g.Year, err = GetOptionalInt(a.reader, "Year (optional)", a.out); err != nil {
		return nil, err
	}
	if g.Description, err = GetOptionalText(a.reader, "Description (optional)", a.out); err != nil {
		return nil, err
	}
	if g.URL, err = GetOptionalText(a.reader, "URL (optional)", a.out); err != nil {
		return nil, err
	}
	if g.Play, err = GetOptionalText(a.reader, "Where to play (optional)", a.out); err != nil {
		return nil, err
	}
	return g, nil
}
