package app

import (
	"bitwise74/conference-api/internal"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps(t *testing.T) *internal.Deps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	principals := ttlcache.NewCache()
	t.Cleanup(func() { principals.Close() })

	return &internal.Deps{
		Principals: principals,
		Settings: internal.Settings{
			JWTSecret:     []byte("engine-secret"),
			JWTTTL:        time.Hour,
			MaxUploadSize: 1 << 20,
			Categories:    []string{"Machine Learning"},
		},
	}
}

func categories(e *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/papers/categories", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestNewEngineWithoutOrigins(t *testing.T) {
	var e *gin.Engine
	require.NotPanics(t, func() {
		e = NewEngine(testDeps(t), EngineOpts{})
	})

	w := categories(e, "http://elsewhere.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewEngineAllowsOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := NewEngine(testDeps(t), EngineOpts{
		Context:     ctx,
		CORSOrigins: []string{"http://conf.test"},
		RateLimit:   5,
	})

	w := categories(e, "http://conf.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://conf.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = categories(e, "http://elsewhere.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNewRedisStore(t *testing.T) {
	rdb, store := newRedisStore("127.0.0.1:6390", "hunter2")
	defer rdb.Close()

	assert.IsType(t, &persist.RedisStore{}, store)
	assert.Equal(t, "127.0.0.1:6390", rdb.Options().Addr)
	assert.Equal(t, "hunter2", rdb.Options().Password)
}
