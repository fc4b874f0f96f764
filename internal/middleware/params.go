package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
)

const contextKeyID = "id"

// RequireID parses the :id path parameter for entity routes
func RequireID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid id")
			return
		}

		c.Set(contextKeyID, id)
		c.Next()
	}
}

// GetID returns the id stored by RequireID
func GetID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(contextKeyID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
