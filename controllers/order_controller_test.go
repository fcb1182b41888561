package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/orders?"+rawQuery, nil)
	return c
}

func TestParsePaginationParams_Defaults(t *testing.T) {
	page, limit := parsePaginationParams(paginationContext(t, ""))

	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}

func TestParsePaginationParams_Explicit(t *testing.T) {
	page, limit := parsePaginationParams(paginationContext(t, "page=3&limit=25"))

	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)
}

func TestParsePaginationParams_ClampsLimit(t *testing.T) {
	page, limit := parsePaginationParams(paginationContext(t, "page=1&limit=5000"))

	assert.Equal(t, 1, page)
	assert.Equal(t, 100, limit)
}

func TestParsePaginationParams_IgnoresGarbage(t *testing.T) {
	page, limit := parsePaginationParams(paginationContext(t, "page=-2&limit=abc"))

	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}
