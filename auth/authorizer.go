package auth

import (
	"context"
	"fmt"

	"github.com/jonwraymond/memoize/memo"
)

// ActionCall is the action checked before a memoized function runs.
const ActionCall = "call"

// Authorizer determines if an identity is allowed to invoke a function.
type Authorizer interface {
	// Authorize checks if the request is permitted.
	// Returns nil if authorized, or an error (typically *AuthzError) if denied.
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest contains the information needed for authorization.
type AuthzRequest struct {
	// Subject is the identity making the call. Nil when none is attached.
	Subject *Identity

	// Func is the name of the function being invoked (e.g., "users.delete").
	Func string

	// Action is the requested action. Decorate always uses ActionCall.
	Action string

	// Args are the call arguments, for authorizers that inspect them.
	Args memo.Args
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	// Subject is the principal that was denied.
	Subject string

	// Func is the function that was denied.
	Func string

	// Action is the action that was denied.
	Action string

	// Reason explains why access was denied.
	Reason string

	// Cause is the underlying error if any.
	Cause error
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q func=%q action=%q reason=%q",
		e.Subject, e.Func, e.Action, e.Reason)
}

// Unwrap returns the cause error for errors.Is/As support.
func (e *AuthzError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

func deny(req *AuthzRequest, reason string) *AuthzError {
	subject := ""
	if req.Subject != nil {
		subject = req.Subject.Principal
	}
	return &AuthzError{
		Subject: subject,
		Func:    req.Func,
		Action:  req.Action,
		Reason:  reason,
	}
}

// AllowAllAuthorizer permits all requests.
type AllowAllAuthorizer struct{}

// Authorize always returns nil (permitted).
func (AllowAllAuthorizer) Authorize(context.Context, *AuthzRequest) error { return nil }

// Name returns "allow_all".
func (AllowAllAuthorizer) Name() string { return "allow_all" }

// DenyAllAuthorizer denies all requests.
type DenyAllAuthorizer struct{}

// Authorize always returns an error (denied).
func (DenyAllAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	return deny(req, "all requests denied")
}

// Name returns "deny_all".
func (DenyAllAuthorizer) Name() string { return "deny_all" }

// AuthorizerFunc is an adapter to allow use of ordinary functions as Authorizers.
type AuthorizerFunc func(ctx context.Context, req *AuthzRequest) error

// Authorize calls the function.
func (f AuthorizerFunc) Authorize(ctx context.Context, req *AuthzRequest) error {
	return f(ctx, req)
}

// Name returns "func" for function-based authorizers.
func (f AuthorizerFunc) Name() string {
	return "func"
}

// RequireRole permits callers holding at least one of roles. Expired
// identities are denied.
func RequireRole(roles ...string) Authorizer {
	return AuthorizerFunc(func(_ context.Context, req *AuthzRequest) error {
		if req.Subject == nil {
			return deny(req, "no identity provided")
		}
		if req.Subject.IsExpired() {
			return &AuthzError{
				Subject: req.Subject.Principal,
				Func:    req.Func,
				Action:  req.Action,
				Reason:  "identity expired",
				Cause:   ErrTokenExpired,
			}
		}
		for _, r := range roles {
			if req.Subject.HasRole(r) {
				return nil
			}
		}
		return deny(req, fmt.Sprintf("requires one of roles %v", roles))
	})
}

var (
	_ Authorizer = AllowAllAuthorizer{}
	_ Authorizer = DenyAllAuthorizer{}
	_ Authorizer = AuthorizerFunc(nil)
)
