package middleware

import "net/http"

// StatusWriter records the status code and body size written through it.
type StatusWriter struct {
	http.ResponseWriter
	Status int
	Bytes  int
}

// NewStatusWriter wraps w. Status defaults to 200 until WriteHeader is called.
func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{ResponseWriter: w, Status: http.StatusOK}
}

func (s *StatusWriter) WriteHeader(code int) {
	s.Status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *StatusWriter) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.Bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *StatusWriter) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
