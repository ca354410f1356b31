package mw

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated GETs of the same path from store for ttl. Only 2xx
// responses are kept. A request with "Cache-Control: no-cache" skips the
// lookup and refreshes the entry. Place it after any auth middleware.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	control := fmt.Sprintf("private, max-age=%d", int(ttl.Seconds()))

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.Path
		if !noCache(c.Request) {
			if v, found := store.Get(key); found {
				resp := v.(cachedResponse)
				c.Header("Content-Type", resp.contentType)
				c.Header("Cache-Control", control)
				c.Header("X-Cache", "HIT")
				c.Status(resp.status)
				_, _ = c.Writer.Write(resp.body)
				c.Abort()
				return
			}
		}

		c.Header("Cache-Control", control)
		c.Header("X-Cache", "MISS")
		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		if status := rec.Status(); status >= 200 && status < 300 {
			store.Set(key, cachedResponse{
				status:      status,
				contentType: rec.Header().Get("Content-Type"),
				body:        bytes.Clone(rec.body.Bytes()),
			}, ttl)
		}
	}
}

func noCache(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache")
}
