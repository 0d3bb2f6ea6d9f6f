package api

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserName  = "username"
	ctxSessionID = "session_id"
	ctxToken     = "token"
)

// tokenFromRequest prefers an Authorization bearer token over the cookie.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader(common.AuthorizationHeaderName); strings.HasPrefix(h, common.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
	}
	if v, err := c.Cookie(common.AccessTokenCookieName); err == nil {
		return v
	}
	return ""
}

// accessTokenMiddleware resolves the caller's principal. Handlers behind it
// read identity only from the gin context.
func (s *HTTPServer) accessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			abortWithError(c, common.ErrUnauthorized)
			return
		}

		p, err := s.auth.VerifyToken(c.Request.Context(), token)
		if err != nil {
			s.logFailure(c, "token rejected", err)
			abortWithError(c, err)
			return
		}

		c.Set(ctxUserName, p.UserName)
		c.Set(ctxSessionID, p.SessionID)
		c.Set(ctxToken, token)
		c.Next()
	}
}

func (s *HTTPServer) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// logFailure records unexpected errors; expected client errors stay at debug.
func (s *HTTPServer) logFailure(c *gin.Context, msg string, err error) {
	if statusFor(err) >= 500 {
		s.logger.Error(c.Request.Context(), msg, "error", err)
		return
	}
	s.logger.Debug(c.Request.Context(), msg, "error", err)
}
