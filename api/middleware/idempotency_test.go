package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/paytaksi/paytaksi-backend/pkg/logger"
)

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "pt:idemp:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func testHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	})
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	logg := logger.New(logger.Options{Output: io.Discard})
	calls := 0
	handler := Idempotency(store, logg)(testHandler(&calls))

	body := `{"approve":true}`
	first := httptest.NewRequest(http.MethodPost, "/api/admin/v1/topups/9f1/decide", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "abc-123")
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, first)

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if rec1.Code != http.StatusOK {
		t.Fatalf("status = %d", rec1.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/admin/v1/topups/9f1/decide", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "abc-123")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, second)

	if calls != 1 {
		t.Fatalf("handler calls = %d after replay, want 1", calls)
	}
	if rec2.Body.String() != rec1.Body.String() {
		t.Fatalf("replayed body = %q, want %q", rec2.Body.String(), rec1.Body.String())
	}
	if rec2.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("replayed content type = %q", rec2.Header().Get("Content-Type"))
	}
}

func TestIdempotencyRejectsReusedKeyWithNewBody(t *testing.T) {
	store := newFakeStore()
	logg := logger.New(logger.Options{Output: io.Discard})
	calls := 0
	handler := Idempotency(store, logg)(testHandler(&calls))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/drivers/1/offers/2/accept", strings.NewReader(`{}`))
	first.Header.Set("Idempotency-Key", "key-1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/drivers/1/offers/2/accept", strings.NewReader(`{"other":1}`))
	second.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newFakeStore()
	logg := logger.New(logger.Options{Output: io.Discard})
	calls := 0
	handler := Idempotency(store, logg)(testHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/passengers/p1/rides", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if calls != 0 {
		t.Fatalf("handler calls = %d, want 0", calls)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIdempotencySkipsUnguardedRoutes(t *testing.T) {
	store := newFakeStore()
	logg := logger.New(logger.Options{Output: io.Discard})
	calls := 0
	handler := Idempotency(store, logg)(testHandler(&calls))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drivers/d1/rides", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestRouteTTLUsesCriticalWindowForMoneyMoves(t *testing.T) {
	ttl, ok := routeTTL(http.MethodPost, "/api/v1/drivers/d1/wallet/topups")
	if !ok || ttl != criticalIdempotencyTTL {
		t.Fatalf("topups ttl = %v ok=%v", ttl, ok)
	}
	ttl, ok = routeTTL(http.MethodPost, "/api/v1/recipients/r1/notifications/read-all")
	if !ok || ttl != defaultIdempotencyTTL {
		t.Fatalf("read-all ttl = %v ok=%v", ttl, ok)
	}
	if _, ok := routeTTL(http.MethodGet, "/api/v1/drivers/d1/rides"); ok {
		t.Fatal("GET should not be guarded")
	}
}
