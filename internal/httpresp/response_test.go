package httpresp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func pageOf(t *testing.T, query string) (Page, bool, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x?"+query, nil)

	p, ok := PageFrom(c)
	return p, ok, w
}

func TestPageFrom(t *testing.T) {
	p, ok, _ := pageOf(t, "")
	assert.True(t, ok)
	assert.Equal(t, Page{Page: 1, Limit: defaultLimit}, p)

	p, ok, _ = pageOf(t, "page=3&limit=1000")
	assert.True(t, ok)
	assert.Equal(t, Page{Page: 3, Limit: maxLimit}, p)
	assert.Equal(t, 400, p.Offset())

	_, ok, w := pageOf(t, "page=0")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestList_EmptyIsArray(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	List[int](c, nil)

	assert.JSONEq(t, `{"data":[],"total":0}`, w.Body.String())
}
