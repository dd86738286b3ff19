package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{
			name:  "defaults when absent",
			query: "",
			want:  Params{Page: 1, Limit: 20, Skip: 0},
		},
		{
			name:  "explicit page and limit",
			query: "page=3&limit=10",
			want:  Params{Page: 3, Limit: 10, Skip: 20},
		},
		{
			name:  "limit clamped to maximum",
			query: "page=1&limit=500",
			want:  Params{Page: 1, Limit: 100, Skip: 0},
		},
		{
			name:  "non-numeric values fall back",
			query: "page=abc&limit=xyz",
			want:  Params{Page: 1, Limit: 20, Skip: 0},
		},
		{
			name:  "negative values fall back",
			query: "page=-2&limit=-5",
			want:  Params{Page: 1, Limit: 20, Skip: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(contextWithQuery(tt.query))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetadataFrom(t *testing.T) {
	meta := MetadataFrom(45, Params{Page: 2, Limit: 20})

	assert.Equal(t, int64(45), meta.TotalItems)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 20, meta.PageSize)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestMetadataFromLastPage(t *testing.T) {
	meta := MetadataFrom(45, Params{Page: 3, Limit: 20})

	assert.False(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestMetadataFromEmpty(t *testing.T) {
	meta := MetadataFrom(0, Params{Page: 1, Limit: 20})

	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.False(t, meta.HasPrevPage)
}
