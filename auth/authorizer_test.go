package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAllowAllAuthorizer(t *testing.T) {
	a := AllowAllAuthorizer{}
	if a.Name() != "allow_all" {
		t.Errorf("Name() = %v, want allow_all", a.Name())
	}
	if err := a.Authorize(context.Background(), &AuthzRequest{Func: "f"}); err != nil {
		t.Errorf("Authorize() = %v, want nil", err)
	}
}

func TestDenyAllAuthorizer(t *testing.T) {
	a := DenyAllAuthorizer{}
	req := &AuthzRequest{Subject: &Identity{Principal: "alice"}, Func: "users.delete", Action: ActionCall}

	err := a.Authorize(context.Background(), req)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Authorize() = %v, want ErrForbidden", err)
	}
	var authzErr *AuthzError
	if !errors.As(err, &authzErr) {
		t.Fatalf("expected *AuthzError, got %T", err)
	}
	if authzErr.Subject != "alice" || authzErr.Func != "users.delete" {
		t.Errorf("AuthzError = %+v", authzErr)
	}
	if !strings.Contains(err.Error(), `func="users.delete"`) {
		t.Errorf("Error() = %q, want func name", err.Error())
	}
}

func TestAuthzError_Unwrap(t *testing.T) {
	err := &AuthzError{Reason: "expired", Cause: ErrTokenExpired}
	if !errors.Is(err, ErrTokenExpired) {
		t.Error("AuthzError should unwrap to its cause")
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("AuthzError should match ErrForbidden")
	}
}

func TestAuthorizerFunc(t *testing.T) {
	var seen *AuthzRequest
	a := AuthorizerFunc(func(_ context.Context, req *AuthzRequest) error {
		seen = req
		return nil
	})
	if a.Name() != "func" {
		t.Errorf("Name() = %v, want func", a.Name())
	}
	req := &AuthzRequest{Func: "f"}
	if err := a.Authorize(context.Background(), req); err != nil {
		t.Fatalf("Authorize() = %v", err)
	}
	if seen != req {
		t.Error("AuthorizerFunc should receive the request")
	}
}

func TestRequireRole(t *testing.T) {
	a := RequireRole("admin", "owner")

	tests := []struct {
		name    string
		subject *Identity
		wantErr error
	}{
		{"no identity", nil, ErrForbidden},
		{"admin", &Identity{Principal: "alice", Roles: []string{"admin"}}, nil},
		{"owner", &Identity{Principal: "carol", Roles: []string{"owner"}}, nil},
		{"guest", &Identity{Principal: "bob", Roles: []string{"guest"}}, ErrForbidden},
		{
			"expired admin",
			&Identity{Principal: "alice", Roles: []string{"admin"}, ExpiresAt: time.Now().Add(-time.Minute)},
			ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Authorize(context.Background(), &AuthzRequest{Subject: tt.subject, Func: "users.delete", Action: ActionCall})
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Authorize() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authorize() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
