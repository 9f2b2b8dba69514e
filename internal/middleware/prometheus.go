package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/router"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

// Prometheus labels every request with its path and the errorx code of the
// response, 0 on success and -1 on unexpected errors.
func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		startTime := xcontext.StartTime(ctx)

		req := xcontext.HTTPRequest(ctx)
		code := 0
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}
		path := req.URL.Path

		common.PromCounters[common.HTTPRequestTotal].
			WithLabelValues(path, fmt.Sprint(code)).Inc()

		if !startTime.IsZero() {
			common.PromHistograms[common.HTTPRequestDurationSeconds].
				WithLabelValues(path, fmt.Sprint(code)).Observe(time.Since(startTime).Seconds())
		}
	}
}
