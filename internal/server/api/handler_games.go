package api

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/server/services"
	"github.com/gin-gonic/gin"
)

// gameRequest rejects a non-string name or a non-integer year at decode time.
type gameRequest struct {
	Name        *string `json:"name"`
	Year        *int    `json:"year"`
	Description *string `json:"desc"`
	Img         *string `json:"img"`
	URL         *string `json:"url"`
	Play        *string `json:"play"`
}

func (r *gameRequest) toInput() *services.GameInput {
	in := &services.GameInput{
		Year:        r.Year,
		Description: r.Description,
		Img:         r.Img,
		URL:         r.URL,
		Play:        r.Play,
	}
	if r.Name != nil {
		in.Name = *r.Name
	}
	return in
}

func bindGame(c *gin.Context) (*services.GameInput, bool) {
	var req gameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrInvalidInput)
		return nil, false
	}
	return req.toInput(), true
}

// gameID parses :id; anything but an integer is treated as an unknown route.
func gameID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, common.ErrNotFound)
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) listGames(c *gin.Context) {
	games, err := s.games.List(c.Request.Context())
	if err != nil {
		s.logFailure(c, "list games failed", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (s *HTTPServer) createGame(c *gin.Context) {
	in, ok := bindGame(c)
	if !ok {
		return
	}

	id, err := s.games.Create(c.Request.Context(), in)
	if err != nil {
		s.logFailure(c, "create game failed", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "Game added", "id": id})
}

func (s *HTTPServer) updateGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	in, ok := bindGame(c)
	if !ok {
		return
	}

	if err := s.games.Update(c.Request.Context(), id, in); err != nil {
		s.logFailure(c, "update game failed", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Game updated"})
}

func (s *HTTPServer) deleteGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	if err := s.games.Delete(c.Request.Context(), id); err != nil {
		s.logFailure(c, "delete game failed", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Game deleted"})
}

func (s *HTTPServer) uploadCover(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	up, err := s.covers.PresignUpload(c.Request.Context(), id)
	if err != nil {
		s.logFailure(c, "cover presign failed", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": up.Key, "url": up.URL, "expires_at": up.ExpiresAt})
}

type confirmCoverRequest struct {
	Key string `json:"key" binding:"required"`
}

// confirmCover attaches an uploaded object to the game once the client's PUT
// to the presigned URL has succeeded.
func (s *HTTPServer) confirmCover(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}
	var req confirmCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrInvalidInput)
		return
	}

	if err := s.covers.ConfirmUpload(c.Request.Context(), id, req.Key); err != nil {
		s.logFailure(c, "cover confirm failed", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Cover saved"})
}

func (s *HTTPServer) coverURL(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	url, err := s.covers.GameCoverURL(c.Request.Context(), id)
	if err != nil {
		s.logFailure(c, "cover url failed", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
