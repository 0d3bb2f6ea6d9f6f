package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/server/services"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Msg       string    `json:"msg"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *HTTPServer) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "API OK"})
}

// bindCredentials rejects bodies without both fields before any service call.
func bindCredentials(c *gin.Context) (*credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "Missing username or password"})
		return nil, false
	}
	return &req, true
}

func (s *HTTPServer) register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	token, err := s.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.logFailure(c, "registration failed", err)
		abortWithError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "username", token.UserName)
	s.setTokenCookie(c, token)
	c.JSON(http.StatusOK, tokenResponse{
		Msg:       fmt.Sprintf("User %s registered and logged in", token.UserName),
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	})
}

func (s *HTTPServer) login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	token, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.logFailure(c, "login failed", err)
		abortWithError(c, err)
		return
	}

	s.setTokenCookie(c, token)
	c.JSON(http.StatusOK, tokenResponse{
		Msg:       "Login successful",
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	})
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), c.GetString(ctxToken)); err != nil {
		s.logFailure(c, "logout failed", err)
		abortWithError(c, err)
		return
	}

	s.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"msg": "Logout successful"})
}

type deleteUserRequest struct {
	Username string `json:"username"`
}

// deleteUser removes the caller's own account. A username in the body is only
// a confirmation and must name the caller.
func (s *HTTPServer) deleteUser(c *gin.Context) {
	username := c.GetString(ctxUserName)

	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, common.ErrInvalidInput)
		return
	}
	if req.Username != "" && strings.TrimSpace(req.Username) != username {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "Users may only delete their own account"})
		return
	}

	removed, err := s.auth.DeleteUser(c.Request.Context(), c.GetString(ctxToken))
	if err != nil {
		s.logFailure(c, "user deletion failed", err)
		abortWithError(c, err)
		return
	}

	s.clearTokenCookie(c)
	if !removed {
		c.JSON(http.StatusBadRequest, gin.H{"msg": fmt.Sprintf("Deletion of user %s not successful", username)})
		return
	}

	s.logger.Info(c.Request.Context(), "Deleted user", "username", username)
	c.JSON(http.StatusOK, gin.H{"msg": fmt.Sprintf("User %s deleted", username)})
}

func (s *HTTPServer) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": c.GetString(ctxUserName)})
}

func (s *HTTPServer) setTokenCookie(c *gin.Context, t *services.Token) {
	maxAge := int(time.Until(t.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(common.AccessTokenCookieName, t.Value, maxAge, "/", "", s.cookieSecure, true)
}

func (s *HTTPServer) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(common.AccessTokenCookieName, "", -1, "/", "", s.cookieSecure, true)
}
