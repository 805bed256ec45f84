package server

import (
	"net/http"
	"strings"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// logRequests writes one line per request. Chart images are only logged at
// debug level since every dropdown change fetches one.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		line := "[http] %s %s %d %dB %s"
		args := []any{r.Method, r.URL.Path, rec.status, rec.bytes, time.Since(start).Round(time.Microsecond)}
		switch {
		case rec.status >= http.StatusInternalServerError:
			s.log.Error(line, args...)
		case rec.status >= http.StatusBadRequest:
			s.log.Warn(line, args...)
		case strings.Contains(r.URL.Path, "/charts/"):
			s.log.Debug(line, args...)
		default:
			s.log.Info(line, args...)
		}
	})
}
