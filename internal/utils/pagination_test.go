package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/agency-hub/internal/constants"
)

func queryContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/notifications?"+rawQuery, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{"defaults", "", PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{"explicit", "page=3&limit=10", PaginationParams{Page: 3, Limit: 10, Offset: 20}},
		{"page below one", "page=0&limit=10", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
		{"limit above max", "limit=1000", PaginationParams{Page: 1, Limit: constants.MaxPageSize, Offset: 0}},
		{"garbage", "page=abc&limit=-4", PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetPaginationParams(queryContext(tt.query)))
		})
	}
}

func TestPaginationParams_Response(t *testing.T) {
	resp := NewPaginationParams(2, 10).Response(25)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasMore)
	assert.Equal(t, int64(25), resp.Total)

	last := NewPaginationParams(3, 10).Response(25)
	assert.False(t, last.HasMore)

	empty := NewPaginationParams(1, 10).Response(0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasMore)
}
