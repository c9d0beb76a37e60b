package auth

import (
	"testing"
	"time"

	"SleepFM/storage"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "u1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func managerWith(t *testing.T, s *Session) *Manager {
	t.Helper()
	store := storage.NewMemoryStore()
	m := NewManager(store)
	if s != nil {
		if err := m.Save(*s); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestStatus(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	expired := signedToken(t, time.Now().Add(-time.Hour))
	noExp := signedToken(t, time.Time{})

	tests := []struct {
		name    string
		session *Session
		auth    bool
		guest   bool
	}{
		{"no session", nil, false, false},
		{"token", &Session{Token: valid}, true, false},
		{"access_token fallback", &Session{AccessToken: valid}, true, false},
		{"opaque token passes", &Session{Token: "not-a-jwt"}, true, false},
		{"jwt without exp passes", &Session{Token: noExp}, true, false},
		{"expired jwt rejected", &Session{Token: expired}, false, false},
		{"guest without token", &Session{Guest: true}, false, true},
		{"guest with token", &Session{Token: valid, Guest: true}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := managerWith(t, tt.session)
			st := m.Status()
			if st.IsAuthenticated != tt.auth || st.IsGuest != tt.guest {
				t.Fatalf("Status() = %+v, want auth=%v guest=%v", st, tt.auth, tt.guest)
			}
		})
	}
}

func TestSaveAndClear(t *testing.T) {
	m := managerWith(t, nil)
	if m.Session() != nil {
		t.Fatal("fresh store should have no session")
	}
	if err := m.Save(Session{ID: "7", Token: "tk"}); err != nil {
		t.Fatal(err)
	}
	s := m.Session()
	if s == nil || s.ID != "7" || s.BearerToken() != "tk" {
		t.Fatalf("session = %+v", s)
	}
	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if m.Session() != nil {
		t.Fatal("session survived clear")
	}
}
