package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestHelpers_WriteEnvelope(t *testing.T) {
	cases := []struct {
		respond func(*gin.Context)
		status  int
		name    string
		message string
	}{
		{func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, ErrNameUnauthorized, "Missing or invalid credentials"},
		{func(c *gin.Context) { Forbidden(c, "nope") }, http.StatusForbidden, ErrNameForbidden, "nope"},
		{func(c *gin.Context) { NotFound(c, "") }, http.StatusNotFound, ErrNameNotFound, "Not Found"},
		{func(c *gin.Context) { BadRequest(c, "bad") }, http.StatusBadRequest, ErrNameValidation, "bad"},
		{func(c *gin.Context) { Conflict(c, "") }, http.StatusConflict, ErrNameConflict, "Resource conflict"},
		{func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, ErrNameRateLimit, "Too many requests, please try again later."},
		{func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, ErrNameApplication, "Internal Server Error"},
		{func(c *gin.Context) { ServiceUnavailable(c, "") }, http.StatusServiceUnavailable, ErrNameServiceUnavailable, "Service temporarily unavailable"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		tc.respond(c)

		require.Equal(t, tc.status, w.Code)
		require.True(t, c.IsAborted())

		var body struct {
			Data  interface{} `json:"data"`
			Error APIError    `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Nil(t, body.Data)
		require.Equal(t, tc.status, body.Error.Status)
		require.Equal(t, tc.name, body.Error.Name)
		require.Equal(t, tc.message, body.Error.Message)
	}
}
