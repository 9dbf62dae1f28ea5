package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fulfillment/internal/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

// RequestValidator checks requests under baseURL against doc before they
// reach the Server. Requests for paths doc does not describe pass through.
func RequestValidator(doc *openapi3.T, baseURL string) (echo.MiddlewareFunc, error) {
	paths := openapi3.NewPaths()
	for p, item := range doc.Paths.Map() {
		paths.Set(baseURL+p, item)
	}
	doc.Paths = paths
	doc.Servers = nil

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				return next(ctx)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
			}
			return next(ctx)
		}
	}, nil
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return err.Error()
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(reqErr.Err, &schemaErr) {
		field := schemaErr.JSONPointer()
		if len(field) > 0 {
			return "invalid field " + joinPointer(field) + ": " + schemaErr.Reason
		}
		return schemaErr.Reason
	}
	if reqErr.Parameter != nil {
		return "invalid parameter " + reqErr.Parameter.Name + ": " + reqErr.Reason
	}
	return reqErr.Error()
}

func joinPointer(p []string) string {
	out := p[0]
	for _, part := range p[1:] {
		out += "." + part
	}
	return out
}

// Metrics observes request duration by method, route pattern and status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			code := ctx.Response().Status
			var he *echo.HTTPError
			switch {
			case errors.As(err, &he):
				code = he.Code
			case err != nil && !ctx.Response().Committed:
				code = http.StatusInternalServerError
			}

			metrics.HTTPRequestDuration.
				WithLabelValues(ctx.Request().Method, ctx.Path(), strconv.Itoa(code)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
