// Package feishutest provides an in-process fake of the Feishu open platform
// for tests.
package feishutest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Token is the tenant access token issued by the fake server.
const Token = "t-test-tenant-token"

// Request is a recorded API call.
type Request struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   map[string]any
	Auth   string
}

// Reply is what a handler returns: the envelope code, message and data.
type Reply struct {
	Code int
	Msg  string
	Data any
	// Status overrides the HTTP status (default 200).
	Status int
}

// OK returns a success reply carrying data.
func OK(data any) Reply {
	return Reply{Msg: "success", Data: data}
}

// Fail returns an error reply with the given code.
func Fail(code int, msg string) Reply {
	return Reply{Code: code, Msg: msg}
}

// HandlerFunc answers one API call.
type HandlerFunc func(r Request) Reply

// Server is a fake Feishu endpoint. Unregistered routes answer 404.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	handlers   map[string]HandlerFunc
	requests   []Request
	tokenCalls int
	tokenReply *Reply
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{handlers: make(map[string]HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers fn for method and path (without query string).
func (s *Server) Handle(method, path string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method+" "+path] = fn
}

// FailToken makes the token endpoint answer with reply.
func (s *Server) FailToken(reply Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenReply = &reply
}

// Requests returns the recorded API calls, excluding token requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// TokenCalls returns how many times a tenant token was requested.
func (s *Server) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	if r.URL.Path == "/open-apis/auth/v3/tenant_access_token/internal" {
		s.serveToken(w, body)
		return
	}

	req := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   body,
		Auth:   r.Header.Get("Authorization"),
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	fn, ok := s.handlers[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"code": 404, "msg": "no route " + r.Method + " " + r.URL.Path})
		return
	}

	reply := fn(req)
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"code": reply.Code, "msg": reply.Msg, "data": reply.Data})
}

func (s *Server) serveToken(w http.ResponseWriter, body map[string]any) {
	s.mu.Lock()
	s.tokenCalls++
	reply := s.tokenReply
	s.mu.Unlock()

	if reply != nil {
		writeJSON(w, http.StatusOK, map[string]any{"code": reply.Code, "msg": reply.Msg})
		return
	}
	if body["app_id"] == "" || body["app_secret"] == "" {
		writeJSON(w, http.StatusOK, map[string]any{"code": 10003, "msg": "invalid param"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":                0,
		"msg":                 "ok",
		"tenant_access_token": Token,
		"expire":              7200,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
