package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/router"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)
		if operator := xcontext.Operator(ctx); operator != "" {
			info = fmt.Sprintf("%s | %s", info, operator)
		}

		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d", info, -1)
			}
		} else {
			xcontext.Logger(ctx).Infof("%s", info)
		}
	}
}
