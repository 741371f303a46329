package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/project-tracker/pkg/helpers"
	"github.com/oksasatya/project-tracker/pkg/metrics"
)

func init() { gin.SetMode(gin.TestMode) }

func protected(jwt *helpers.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/projects", Auth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(CtxUserIDKey), "email": c.GetString(CtxUserEmailKey)})
	})
	return r
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	tok, _, err := jwt.GenerateAccessToken("u-1", "jane@example.com")
	require.NoError(t, err)

	w := get(protected(jwt), "/projects", map[string]string{"Authorization": "Bearer " + tok})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u-1","email":"jane@example.com"}`, w.Body.String())
}

func TestAuthRejects(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	foreign, _, err := helpers.NewJWTManager("other", time.Hour).GenerateAccessToken("u-1", "x@example.com")
	require.NoError(t, err)
	good, _, err := jwt.GenerateAccessToken("u-1", "x@example.com")
	require.NoError(t, err)

	cases := map[string]string{
		"missing":        "",
		"wrong scheme":   "Basic " + good,
		"garbage":        "Bearer not-a-token",
		"foreign secret": "Bearer " + foreign,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(protected(jwt), "/projects", map[string]string{"Authorization": header})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
			assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("abc"))
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	const id = "6f1c1f8e-3c0b-4f43-9a8e-8c3b51f1a001"
	w := get(r, "/", map[string]string{HeaderRequestID: id})
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, id, w.Header().Get(HeaderRequestID))

	w = get(r, "/", map[string]string{HeaderRequestID: "<script>"})
	assert.NotEqual(t, "<script>", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	assert.Equal(t, "203.0.113.7", get(r, "/", map[string]string{"CF-Connecting-IP": "203.0.113.7"}).Body.String())
	assert.Equal(t, "198.51.100.1", get(r, "/", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}).Body.String())
	assert.Equal(t, "192.0.2.1", get(r, "/", nil).Body.String())
}

func TestAccessLogLevels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestIDMiddleware(), AccessLog(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	get(r, "/ok", nil)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, 200, hook.LastEntry().Data["status"])
	assert.NotEmpty(t, hook.LastEntry().Data["request_id"])

	get(r, "/missing", nil)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	get(r, "/boom", nil)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "/boom", hook.LastEntry().Data["path"])
}

func TestMetricsCountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/projects/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/projects/:id", "418")
	before := counterValue(t, counter)
	get(r, "/projects/abc", nil)
	get(r, "/projects/def", nil)
	assert.Equal(t, before+2, counterValue(t, counter))
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
