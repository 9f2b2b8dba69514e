package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. Returning an error stops the
// request and the error is written as the response.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response was written, the error (if any) is
// available through xcontext.Error.
type CloserFunc func(ctx context.Context)

type Router struct {
	Inner gin.IRouter

	// ctx carries the application configs, logger and database which every
	// request context inherits.
	ctx     context.Context
	befores []MiddlewareFunc
	afters  []CloserFunc
}

func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{Inner: engine, ctx: ctx}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

// Raw registers a plain http handler, e.g. a websocket upgrader.
func (r *Router) Raw(method, pattern string, handler http.Handler) {
	r.Inner.Handle(method, pattern, gin.WrapH(handler))
}

func (r *Router) Before(middlewares ...MiddlewareFunc) {
	r.befores = append(r.befores, middlewares...)
}

func (r *Router) After(closers ...CloserFunc) {
	r.afters = append(r.afters, closers...)
}

// Group returns a sub router sharing the middlewares registered so far.
// Middlewares added to the group do not affect the parent.
func (r *Router) Group(pattern string) *Router {
	return &Router{
		Inner:   r.Inner.Group(pattern),
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc(nil), r.befores...),
		afters:  append([]CloserFunc(nil), r.afters...),
	}
}

// Handler returns the root engine wrapped with the CORS policy.
func (r *Router) Handler(allowedOrigins []string) http.Handler {
	engine, ok := r.Inner.(*gin.Engine)
	if !ok {
		panic("Handler must be called on the root router")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(engine)
}
