package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func ginContextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/spots?"+query, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	params := GetPaginationParams(ginContextWithQuery(""))
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, DefaultPageSize, params.PageSize)
	assert.Equal(t, "spot_id", params.Sort)
	assert.Equal(t, "asc", params.Order)

	params = GetPaginationParams(ginContextWithQuery("page=0&page_size=9999&order=sideways"))
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, MaxPageSize, params.PageSize)
	assert.Equal(t, "asc", params.Order)
}

func TestMongoSort(t *testing.T) {
	params := &PaginationParams{Sort: "section", Order: "desc"}
	assert.Equal(t, bson.D{{Key: "section", Value: -1}}, params.MongoSort())
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(&PaginationParams{Page: 2, PageSize: 10}, 35)
	assert.Equal(t, 4, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)
}
