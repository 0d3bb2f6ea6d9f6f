package api

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/gin-gonic/gin"
)

var errorTable = []struct {
	err    error
	status int
	msg    string
}{
	{common.ErrInvalidInput, http.StatusBadRequest, "Invalid request"},
	{common.ErrUsernameTaken, http.StatusConflict, "Registration not successful"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "Bad username or password"},
	{common.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{common.ErrNotFound, http.StatusNotFound, "Not found"},
	{common.ErrNotConfigured, http.StatusNotImplemented, "Cover storage is not configured"},
	{common.ErrStoreUnavailable, http.StatusServiceUnavailable, "Service unavailable"},
}

func lookupError(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.msg
		}
	}
	return http.StatusInternalServerError, "Internal error"
}

func statusFor(err error) int {
	status, _ := lookupError(err)
	return status
}

// abortWithError maps err to a status and a fixed message; error details are
// never sent to the client.
func abortWithError(c *gin.Context, err error) {
	status, msg := lookupError(err)
	c.AbortWithStatusJSON(status, gin.H{"msg": msg})
}
