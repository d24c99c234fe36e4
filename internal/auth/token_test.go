package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, hash, err := GenerateToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(token, "occ_"))
	assert.True(t, ValidateTokenFormat(token))
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken(token))

	other, _, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestVerify(t *testing.T) {
	token, hash, err := GenerateToken()
	require.NoError(t, err)

	assert.True(t, Verify(token, hash))
	assert.True(t, Verify(token, strings.ToUpper(hash)))
	assert.False(t, Verify(token[:len(token)-1]+"x", hash))
	assert.False(t, Verify("occ_short", HashToken("occ_short")))
	assert.False(t, Verify("", hash))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, hash, err := GenerateToken()
	require.NoError(t, err)

	router := gin.New()
	router.Use(Middleware(hash))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bad scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"wrong token", "Bearer occ_nope", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + token, "", http.StatusNoContent},
		{"query", "", token, http.StatusNoContent},
		{"header wins over query", "Bearer occ_nope", token, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := "/x"
			if tc.query != "" {
				path += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
