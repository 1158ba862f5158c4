package cachenode

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamware/milena/internal/rpcclient"
	"github.com/dreamware/milena/internal/store"
	"github.com/dreamware/milena/internal/telemetry"
	"github.com/dreamware/milena/internal/tieredcache"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	mem, err := store.NewMemoryStore(100)
	if err != nil {
		t.Fatal(err)
	}
	disk, err := store.NewDiskStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = disk.Close() })
	remote, err := store.NewMemoryStore(100) // stand-in remote tier for handler-level tests
	if err != nil {
		t.Fatal(err)
	}
	cache := tieredcache.New(mem, disk, remote)
	return New(cache, telemetry.New(), testLogger())
}

func doJSON(t *testing.T, srv *httptest.Server, path string, body any) map[string]any {
	t.Helper()
	encoded, _ := json.Marshal(body)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return out
}

func TestHandlerPutGetRoundtrip(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	out := doJSON(t, srv, "/v1/put", rpcclient.PutRequest{Bucket: "b", Key: []byte("k"), Value: []byte("v")})
	if out["successful"] != true {
		t.Fatalf("put failed: %v", out)
	}

	out = doJSON(t, srv, "/v1/get", rpcclient.GetRequest{Bucket: "b", Key: []byte("k")})
	if out["successful"] != true {
		t.Fatalf("get failed: %v", out)
	}
}

func TestHandlerGetMissReturnsSuccessfulEmptyValue(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	out := doJSON(t, srv, "/v1/get", rpcclient.GetRequest{Bucket: "b", Key: []byte("missing")})
	if out["successful"] != true {
		t.Fatalf("expected successful=true on miss, got %v", out)
	}
	if v, ok := out["value"]; ok && v != nil {
		t.Fatalf("expected empty value on miss, got %v", v)
	}
}

func TestHandlerDeleteThenGetMisses(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	_ = doJSON(t, srv, "/v1/put", rpcclient.PutRequest{Bucket: "b", Key: []byte("k"), Value: []byte("v")})
	out := doJSON(t, srv, "/v1/delete", rpcclient.DeleteRequest{Bucket: "b", Key: []byte("k")})
	if out["successful"] != true {
		t.Fatalf("delete failed: %v", out)
	}
	out = doJSON(t, srv, "/v1/get", rpcclient.GetRequest{Bucket: "b", Key: []byte("k")})
	if v, ok := out["value"]; ok && v != nil {
		t.Fatalf("expected miss after delete, got %v", v)
	}
}
