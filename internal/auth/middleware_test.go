package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func request(t *testing.T, h http.Handler, header, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bins", nil)
	if value != "" {
		req.Header.Set(header, value)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPIKey_CorrectKeyAllowed(t *testing.T) {
	h := APIKeyMiddleware("apikey", "x-api-key", "secret")(okHandler())
	if rr := request(t, h, "x-api-key", "secret"); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAPIKey_WrongKeyRejected(t *testing.T) {
	h := APIKeyMiddleware("apikey", "x-api-key", "secret")(okHandler())
	if rr := request(t, h, "x-api-key", "wrong"); rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestAPIKey_MissingKeyRejected(t *testing.T) {
	h := APIKeyMiddleware("apikey", "x-api-key", "secret")(okHandler())
	if rr := request(t, h, "x-api-key", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestAPIKey_CustomHeader(t *testing.T) {
	h := APIKeyMiddleware("apikey", "x-binwatch-token", "secret")(okHandler())
	if rr := request(t, h, "x-binwatch-token", "secret"); rr.Code != http.StatusOK {
		t.Errorf("custom header status: got %d, want 200", rr.Code)
	}
	if rr := request(t, h, "x-api-key", "secret"); rr.Code != http.StatusUnauthorized {
		t.Errorf("default header must not satisfy custom header auth: got %d, want 401", rr.Code)
	}
}

func TestAPIKey_DisabledModePassesThrough(t *testing.T) {
	h := APIKeyMiddleware("none", "x-api-key", "secret")(okHandler())
	if rr := request(t, h, "x-api-key", ""); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestAPIKey_EmptyKeyPassesThrough(t *testing.T) {
	h := APIKeyMiddleware("apikey", "x-api-key", "")(okHandler())
	if rr := request(t, h, "x-api-key", ""); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}
