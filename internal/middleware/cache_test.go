package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/config"
)

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Add("X-Multi", "a")
	hdr.Add("X-Multi", "b")
	body := []byte(`{"items":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(payload)
	if !ok {
		t.Fatal("decode failed")
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := gotHdr.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if vals := gotHdr.Values("X-Multi"); len(vals) != 2 || vals[0] != "a" || vals[1] != "b" {
		t.Fatalf("X-Multi = %v", vals)
	}
	if !bytes.Equal(gotBody, body) {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, make([]byte, 7)} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Fatalf("decoded %d-byte payload", len(bs))
		}
	}
	// A header length pointing past the buffer must not be trusted.
	bogus := make([]byte, 8)
	bogus[7] = 0xFF
	if _, _, _, ok := decodePayload(bogus); ok {
		t.Fatal("decoded payload with out-of-range header length")
	}
}

func TestCacheKeyStrategies(t *testing.T) {
	e := echo.New()
	newCtx := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/search/teachers")
		return c
	}
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a := cacheKeyFrom(cfg, newCtx("/v1/search/teachers?subject=piano"))
	b := cacheKeyFrom(cfg, newCtx("/v1/search/teachers?subject=violin"))
	if a == b {
		t.Fatal("different queries hashed to the same key")
	}
	if a != cacheKeyFrom(cfg, newCtx("/v1/search/teachers?subject=piano")) {
		t.Fatal("identical requests hashed to different keys")
	}

	// The route-only strategy ignores the query string.
	cfg.KeyStrategy = "route"
	if cacheKeyFrom(cfg, newCtx("/v1/search/teachers?subject=piano")) !=
		cacheKeyFrom(cfg, newCtx("/v1/search/teachers?subject=violin")) {
		t.Fatal("route strategy should ignore the query")
	}
}
