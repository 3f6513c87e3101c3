package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString error = %v", err)
	}
	return signed
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	valid := jwt.MapClaims{"sub": "organizer", "role": "organizer", "exp": time.Now().Add(time.Hour).Unix()}
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "organizer token", header: "Bearer " + signToken(t, testSecret, valid), want: http.StatusOK},
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", valid), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"role": "organizer", "exp": time.Now().Add(-time.Hour).Unix()}), want: http.StatusUnauthorized},
		{name: "other role", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"role": "viewer"}), want: http.StatusForbidden},
		{name: "no role", header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "x"}), want: http.StatusUnauthorized},
	}

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = GetSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(testSecret)(Authorize("organizer")(next))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if gotSubject != "organizer" {
		t.Errorf("subject = %q", gotSubject)
	}
}

func TestAuthenticateRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": "organizer"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unsigned token accepted")
	})).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// burst of two, then limited
	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:1000"); code != http.StatusNoContent {
			t.Fatalf("request %d status = %d", i, code)
		}
	}
	if code := do("10.0.0.1:1001"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := do("10.0.0.2:1000"); code != http.StatusNoContent {
		t.Errorf("other client status = %d", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RateLimit(0)(next)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}

func TestIPLimiterForgetsIdleClients(t *testing.T) {
	l := newIPLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.allow("a")
	now = now.Add(idleLimiterTTL + time.Second)
	l.allow("b")
	if _, ok := l.limiters["a"]; ok {
		t.Errorf("idle limiter kept")
	}
	if len(l.limiters) != 1 {
		t.Errorf("limiters = %d", len(l.limiters))
	}
}
