package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMiddleware(t *testing.T, inbound string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	c.Request = req
	Middleware()(c)
	return w, c
}

func TestRequestIDMintsUUID(t *testing.T) {
	w, c := runMiddleware(t, "")

	id := Value(c)
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Header().Get(Header))
}

func TestRequestIDPropagatesInbound(t *testing.T) {
	w, c := runMiddleware(t, "trace-42")

	assert.Equal(t, "trace-42", Value(c))
	assert.Equal(t, "trace-42", w.Header().Get(Header))
}

func TestRequestIDReplacesOversizedInbound(t *testing.T) {
	_, c := runMiddleware(t, strings.Repeat("x", 200))

	id := Value(c)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
