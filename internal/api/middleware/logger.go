package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// crlf strips CR/LF from request-supplied values so a crafted path cannot
// forge extra log lines.
var crlf = strings.NewReplacer("\n", "", "\r", "")

// Logger logs one line per request: method, path, status, response size and
// duration.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		log.Printf("%s %s %d %dB %s",
			crlf.Replace(r.Method),
			crlf.Replace(r.URL.Path),
			sw.status,
			sw.bytes,
			time.Since(start),
		)
	})
}

// statusWriter captures the status code and body size written downstream.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}
