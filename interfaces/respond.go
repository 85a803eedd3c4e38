package interfaces

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"devconnect/domain"
	"devconnect/infrastructure"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindInvalid:         http.StatusBadRequest,
	domain.KindUnauthenticated: http.StatusUnauthorized,
	domain.KindForbidden:       http.StatusForbidden,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindConflict:        http.StatusConflict,
	domain.KindInternal:        http.StatusInternalServerError,
}

// respondError renders err as {"error": message}. Only domain messages reach the
// client; anything else becomes a generic 500.
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal("internal server error", err)
	}
	status := statusByKind[de.Kind]
	if status == http.StatusInternalServerError {
		infrastructure.C("http").WithError(err).
			WithField("request_id", requestID(c)).
			WithField("path", c.FullPath()).
			Error("internal error")
	}
	c.JSON(status, gin.H{"error": de.Message})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into dst and answers 400 on malformed input. An
// empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return false
	}
	return true
}

func queryInt(c *gin.Context, fallback int, keys ...string) int {
	for _, k := range keys {
		if v := strings.TrimSpace(c.Query(k)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fallback
			}
			return n
		}
	}
	return fallback
}
