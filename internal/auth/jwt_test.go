package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestIssueAndVerify(t *testing.T) {
	token, err := Issue(testSecret, "user-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	userID, err := Verify(testSecret, token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}

	if userID != "user-42" {
		t.Errorf("Expected user-42, got %q", userID)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := Issue(testSecret, "user-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := Verify("other-secret", token); err == nil {
		t.Error("Expected error for token signed with a different secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	token, err := Issue(testSecret, "user-42", -time.Minute)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := Verify(testSecret, token); err == nil {
		t.Error("Expected error for expired token")
	}
}

func TestVerify_Garbage(t *testing.T) {
	if _, err := Verify(testSecret, "not.a.token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestMiddleware(t *testing.T) {
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Middleware(testSecret, next)

	t.Run("valid token", func(t *testing.T) {
		token, _ := Issue(testSecret, "user-7", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if gotUserID != "user-7" {
			t.Errorf("Expected user-7 in context, got %q", gotUserID)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})
}
