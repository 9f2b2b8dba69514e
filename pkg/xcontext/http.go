package xcontext

import (
	"context"
	"net/http"
	"time"
)

type (
	httpRequestKey struct{}
	startTimeKey   struct{}
	errorKey       struct{}
	responseKey    struct{}
)

func WithHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func HTTPRequest(ctx context.Context) *http.Request {
	req, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return req
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}

func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

func WithResponse(ctx context.Context, resp any) context.Context {
	return context.WithValue(ctx, responseKey{}, resp)
}

func Response(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

// Inherit copies the application values of parent onto a request context.
func Inherit(ctx, parent context.Context) context.Context {
	ctx = WithConfigs(ctx, Configs(parent))
	ctx = WithLogger(ctx, Logger(parent))
	if db := DB(parent); db != nil {
		ctx = WithDB(ctx, db)
	}

	return ctx
}
