package helpers

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/blogs/1/comments?page=2&size=abc", nil)

	page, size := ParsePaginationParams(c)
	assert.Equal(t, 2, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("five", time.Minute))
}

func TestNullConversions(t *testing.T) {
	assert.False(t, GetNullString(nil).Valid)
	s := "IDK1"
	assert.Equal(t, sql.NullString{String: "IDK1", Valid: true}, GetNullString(&s))
	assert.Nil(t, StringPtr(sql.NullString{}))
	assert.Equal(t, "IDK1", *StringPtr(GetNullString(&s)))

	y := 2020
	assert.Equal(t, 2020, *IntPtr(GetNullInt64(&y)))
	assert.Nil(t, IntPtr(GetNullInt64(nil)))
}
