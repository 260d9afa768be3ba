package auth

import (
	"context"

	"github.com/jonwraymond/memoize/memo"
)

// Authenticate returns a decorator that resolves the token attached with
// WithToken into an Identity before calling through. A context that already
// carries an Identity, or carries no token, is passed on unchanged. A nil
// Authenticator yields a nil decorator, which memo.Chain skips.
func Authenticate[R any](a Authenticator) memo.Decorator[R] {
	if a == nil {
		return nil
	}
	return func(next memo.Func[R]) memo.Func[R] {
		return func(ctx context.Context, args memo.Args) (R, error) {
			if IdentityFromContext(ctx) == nil {
				if tok := TokenFromContext(ctx); tok != "" {
					id, err := a.Authenticate(ctx, tok)
					if err != nil {
						var zero R
						return zero, err
					}
					ctx = WithIdentity(ctx, id)
				}
			}
			return next(ctx, args)
		}
	}
}

// Decorate returns a decorator that asks a whether the caller in ctx may call
// the function named fn. Denied calls return the authorizer's error without
// reaching next. A nil Authorizer yields a nil decorator.
func Decorate[R any](a Authorizer, fn string) memo.Decorator[R] {
	if a == nil {
		return nil
	}
	return func(next memo.Func[R]) memo.Func[R] {
		return func(ctx context.Context, args memo.Args) (R, error) {
			req := &AuthzRequest{
				Subject: IdentityFromContext(ctx),
				Func:    fn,
				Action:  ActionCall,
				Args:    args,
			}
			if err := a.Authorize(ctx, req); err != nil {
				var zero R
				return zero, err
			}
			return next(ctx, args)
		}
	}
}
