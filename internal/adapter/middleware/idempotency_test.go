package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl))
	e.POST("/loans", handler)
	e.GET("/loans", handler)
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func goodHeaders() map[string]string {
	return map[string]string{
		"Cx-Request-Id": strings.Repeat("a", 32),
		"Cx-Request-At": strconv.FormatInt(time.Now().Unix(), 10),
		"Cx-Actor":      "tresoriere",
	}
}

func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/loans", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	cases := []struct {
		name string
		mut  func(h map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, "Cx-Request-Id") }},
		{"bad request id", func(h map[string]string) { h["Cx-Request-Id"] = "NOT-HEX" }},
		{"missing request at", func(h map[string]string) { delete(h, "Cx-Request-At") }},
		{"naive request at", func(h map[string]string) { h["Cx-Request-At"] = "2026-08-05T10:00:00" }},
		{"skewed request at", func(h map[string]string) {
			h["Cx-Request-At"] = strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
		}},
		{"missing actor", func(h map[string]string) { delete(h, "Cx-Actor") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := goodHeaders()
			tc.mut(h)
			rec := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"a": 1}), h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_ReplaySameRequest(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]any{"call": calls})
	})
	h := goodHeaders()

	rec1 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"a": 1}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first call: expected 201, got %d", rec1.Code)
	}
	rec2 := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"a": 1}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201, got %d", rec2.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func Test_SameIDDifferentBodyConflicts(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)
	h := goodHeaders()

	if rec := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"a": 1}), h); rec.Code != http.StatusCreated {
		t.Fatalf("first call: expected 201, got %d", rec.Code)
	}
	rec := doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"a": 2}), h)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func Test_DifferentActorsDoNotCollide(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})

	h1 := goodHeaders()
	h2 := goodHeaders()
	h2["Cx-Actor"] = "presidente"

	doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"a": 1}), h1)
	doReq(t, e, http.MethodPost, "/loans", mkJSONBody(t, map[string]int{"a": 1}), h2)
	if calls != 2 {
		t.Fatalf("handler ran %d times, want 2", calls)
	}
}
