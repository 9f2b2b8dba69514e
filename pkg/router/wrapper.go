package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := xcontext.Inherit(c.Request.Context(), router.ctx)
		ctx = xcontext.WithHTTPRequest(ctx, c.Request)

		ctx, err := runMiddlewares(ctx, router.befores)
		if err == nil {
			var resp *Response
			resp, err = handle(ctx, c, method, handler)
			if err == nil {
				ctx = xcontext.WithResponse(ctx, resp)
			}
		}

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			c.JSON(http.StatusOK, newErrorResponse(err))
		} else {
			c.JSON(http.StatusOK, newResponse(xcontext.Response(ctx)))
		}

		for _, closer := range router.afters {
			closer(ctx)
		}
	}
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, middleware := range middlewares {
		next, err := middleware(ctx)
		if err != nil {
			return ctx, err
		}

		ctx = next
	}

	return ctx, nil
}

func handle[Request, Response any](
	ctx context.Context,
	c *gin.Context,
	method string,
	handler HandlerFunc[Request, Response],
) (*Response, error) {
	req := new(Request)
	var err error
	switch method {
	case http.MethodGet:
		err = c.ShouldBindQuery(req)
	case http.MethodPost:
		err = c.ShouldBindJSON(req)
		// An empty body is a request without parameters.
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, errorx.New(errorx.BadRequest, "Unsupported method %s", method)
	}

	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid request")
	}

	return handler(ctx, req)
}
