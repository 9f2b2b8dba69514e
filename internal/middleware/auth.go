package middleware

import (
	"context"
	"strings"

	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/authenticator"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/router"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

const bearerPrefix = "Bearer "

// Operator requires a bearer token issued to an operator and stores its name
// in the context.
func Operator(engine authenticator.TokenEngine[model.OperatorToken]) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token, ok := bearerToken(ctx)
		if !ok {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return verifyOperator(ctx, engine, token)
	}
}

// OptionalOperator is like Operator but lets requests without a bearer token
// through. A token which is present must be valid.
func OptionalOperator(engine authenticator.TokenEngine[model.OperatorToken]) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token, ok := bearerToken(ctx)
		if !ok {
			return ctx, nil
		}

		return verifyOperator(ctx, engine, token)
	}
}

func bearerToken(ctx context.Context) (string, bool) {
	authorization := xcontext.HTTPRequest(ctx).Header.Get("Authorization")
	token, ok := strings.CutPrefix(authorization, bearerPrefix)
	return token, ok && token != ""
}

func verifyOperator(
	ctx context.Context, engine authenticator.TokenEngine[model.OperatorToken], token string,
) (context.Context, error) {
	operator, err := engine.Verify(token)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot verify operator token: %v", err)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid token")
	}

	if operator.Name == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Invalid token")
	}

	return xcontext.WithOperator(ctx, operator.Name), nil
}
