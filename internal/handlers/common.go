package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/dto"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/middleware"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/utils"
)

// listQuery parses filters, sort, populate and pagination from the URL.
func listQuery(c *gin.Context) utils.ListQuery {
	return utils.ParseListQuery(c.Request.URL.Query())
}

// populate returns the extra relations requested on a findOne.
func populate(c *gin.Context) []string {
	return listQuery(c).Populate
}

// actor returns the authenticated user ID or writes a 401.
func actor(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return userID, ok
}

// entityID returns the :id parameter parsed by middleware.RequireID.
func entityID(c *gin.Context) (uint64, bool) {
	id, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid id")
	}
	return id, ok
}

// bindPayload decodes a {"data": {...}} body.
func bindPayload[T any](c *gin.Context) (T, bool) {
	var p dto.Payload[T]
	if err := c.ShouldBindJSON(&p); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{"reason": err.Error()})
		return p.Data, false
	}
	return p.Data, true
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.DataResponse{Data: data})
}

func respondList(c *gin.Context, items interface{}, q utils.ListQuery, total int64) {
	c.JSON(http.StatusOK, dto.NewListResponse(items, q.Pagination, total))
}

// respondCommonError covers errors every handler can see.
func respondCommonError(c *gin.Context, err error) {
	var qerr *repository.QueryError
	if errors.As(err, &qerr) {
		apierrors.BadRequest(c, qerr.Message)
		return
	}
	_ = c.Error(err)
	apierrors.InternalError(c, "Internal server error")
}
