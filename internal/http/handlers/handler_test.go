package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clicker_game/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetUserIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := getUserID(c)
	assert.False(t, ok)

	c.Set(middleware.ContextUserID, int64(42))
	id, ok := getUserID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	c.Set(middleware.ContextUserID, "42")
	_, ok = getUserID(c)
	assert.False(t, ok)
}

func TestRequireUserWritesUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := requireUser(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
