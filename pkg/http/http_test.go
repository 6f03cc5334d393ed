package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	e.GET("/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundError("no model for pattern").WithError(errors.New("x")))
	})
}

func serve(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	var body APIResponse
	if rec.Body.Len() > 0 && rec.Header().Get(echo.HeaderContentType) != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func TestServerEnvelope(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}}, WithMetricsPath(""))

	rec, body := serve(t, s, http.MethodGet, "/ping")
	if rec.Code != http.StatusOK || body.Status != http.StatusOK || body.Data != "pong" {
		t.Fatalf("ping: code=%d body=%+v", rec.Code, body)
	}

	rec, body = serve(t, s, http.MethodGet, "/missing")
	if rec.Code != http.StatusNotFound || body.Message != "no model for pattern" {
		t.Fatalf("missing: code=%d body=%+v", rec.Code, body)
	}

	rec, _ = serve(t, s, http.MethodGet, "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("panic: code=%d", rec.Code)
	}
}

func TestServerCORSPreflight(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}}, WithMetricsPath(""))
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "http://example.com")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "http://example.com" {
		t.Fatalf("headers = %v", rec.Header())
	}
}

type limitRequest struct {
	Limit int `query:"limit" default:"500" validate:"gte=1,lte=5000"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?limit=9000", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	errs := ReadAndValidateRequest(c, &limitRequest{})
	if len(errs) != 1 || errs[0].Code != "ERR_LTE" || errs[0].Field != "limit" {
		t.Fatalf("errs = %+v", errs)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	r := &limitRequest{}
	if errs := ReadAndValidateRequest(c, r); errs != nil {
		t.Fatalf("errs = %+v", errs)
	}
	if r.Limit != 500 {
		t.Fatalf("default not applied: %d", r.Limit)
	}
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "goldcast" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodPost, URL: srv.URL, Body: map[string]int{"a": 1}}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable || !se.Temporary() || se.Body != "busy" {
		t.Fatalf("err = %v", err)
	}
}

func TestReadAndValidateQueryIgnoresBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/?limit=7", strings.NewReader(`{"limit":9000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	r := &limitRequest{}
	if errs := ReadAndValidateQuery(c, r); errs != nil {
		t.Fatalf("errs = %+v", errs)
	}
	if r.Limit != 7 {
		t.Fatalf("limit = %d", r.Limit)
	}
}

func TestClientRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient().SendRequest(context.Background(), &RequestOptions{Method: MethodGet, URL: url})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("err = %v", err)
	}
}
