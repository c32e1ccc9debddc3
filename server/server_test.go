package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobwas/hostring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestServeRedirect(t *testing.T) {
	c := hostring.NewCoordinator(hostring.NewRing(hostring.Config{}))
	c.Insert("server1.com")
	c.Insert("server2.com")
	h := New(c)

	for _, key := range []string{"users/1", "users/2", "a", "deeply/nested/key.json"} {
		t.Run(key, func(t *testing.T) {
			exp, ok := c.Get(key)
			require.True(t, ok)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/serve/"+key, nil))

			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, "https://"+exp, rec.Header().Get("Location"))
		})
	}
}

func TestServeEmpty(t *testing.T) {
	h := New(new(hostring.Coordinator))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/serve/users/1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no backend available", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestServeFixedLocator(t *testing.T) {
	l := &fixedLocator{host: "backend.example.com"}
	h := New(l)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/serve/some/key", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://backend.example.com", rec.Header().Get("Location"))
	assert.Equal(t, []string{"some/key"}, l.keys)
}

func TestNodes(t *testing.T) {
	for _, test := range []struct {
		name  string
		hosts []string
		exp   []string
	}{
		{
			name: "empty",
			exp:  []string{},
		},
		{
			name:  "sorted",
			hosts: []string{"b.com", "a.com"},
			exp:   []string{"a.com", "b.com"},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := new(hostring.Coordinator)
			for _, host := range test.hosts {
				c.Insert(host)
			}
			rec := httptest.NewRecorder()
			New(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nodes", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				Nodes []string `json:"nodes"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, test.exp, resp.Nodes)
		})
	}
}

type fixedLocator struct {
	host string
	keys []string
}

func (l *fixedLocator) Get(key string) (string, bool) {
	l.keys = append(l.keys, key)
	return l.host, true
}

func (l *fixedLocator) Nodes() []string {
	return []string{l.host}
}
