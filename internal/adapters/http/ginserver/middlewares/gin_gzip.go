// Package middlewares holds gin middlewares shared by the dashboard server.
package middlewares

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var compressible = []string{"application/json", "text/html", "text/plain"}

var gzipWriters = sync.Pool{
	New: func() any { return gzip.NewWriter(io.Discard) },
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzw     *gzip.Writer
	decided bool
}

// decide picks compression on the first write, once the handler has set
// Content-Type and the status code.
func (w *gzipResponseWriter) decide() {
	if w.decided {
		return
	}
	w.decided = true

	ct := w.Header().Get("Content-Type")
	ok := false
	for _, p := range compressible {
		if strings.HasPrefix(ct, p) {
			ok = true
			break
		}
	}
	if !ok {
		return
	}
	if status := w.Status(); status == http.StatusNoContent || status < http.StatusOK {
		return
	}

	w.Header().Del("Content-Length")
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Add("Vary", "Accept-Encoding")
	gz, _ := gzipWriters.Get().(*gzip.Writer)
	if gz == nil {
		gz = gzip.NewWriter(io.Discard)
	}
	gz.Reset(w.ResponseWriter)
	w.gzw = gz
}

func (w *gzipResponseWriter) Write(p []byte) (int, error) {
	w.decide()
	if w.gzw != nil {
		return w.gzw.Write(p)
	}
	return w.ResponseWriter.Write(p)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) close() error {
	if w.gzw == nil {
		return nil
	}
	err := w.gzw.Close()
	w.gzw.Reset(io.Discard)
	gzipWriters.Put(w.gzw)
	w.gzw = nil
	return err
}

// GzipResponse compresses JSON, HTML and text responses for clients that
// accept gzip. Websocket upgrades pass through untouched.
func GzipResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		accept := strings.Contains(strings.ToLower(c.GetHeader("Accept-Encoding")), "gzip")
		upgrade := strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
		if !accept || upgrade {
			c.Next()
			return
		}
		grw := &gzipResponseWriter{ResponseWriter: c.Writer}
		c.Writer = grw
		c.Next()
		if err := grw.close(); err != nil {
			_ = c.Error(err)
		}
	}
}
