package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  Page
	}{
		{query: "", want: Page{Number: 1, Size: DefaultPageSize}},
		{query: "?page=3&size=25", want: Page{Number: 3, Size: 25}},
		{query: "?page=0&size=500", want: Page{Number: 1, Size: DefaultPageSize}},
		{query: "?page=abc&size=-1", want: Page{Number: 1, Size: DefaultPageSize}},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/entities"+tt.query, nil)
		assert.Equal(t, tt.want, ParsePaginationParams(c), tt.query)
	}

	assert.Equal(t, 50, Page{Number: 3, Size: 25}.Offset())
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(37, NewPage(2, 10))
	assert.Equal(t, 4, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, NewPage(1, 10))
	assert.Equal(t, 1, empty.TotalPages)

	past := NewPaginationInfo(5, NewPage(9, 10))
	assert.Equal(t, 1, past.CurrentPage)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("1h30m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
}
