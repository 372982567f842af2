package middleware

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Query keys whose values never reach the access log.
var sensitiveKeys = map[string]struct{}{
	"password": {}, "token": {}, "code": {}, "state": {}, "secret": {}, "access_token": {},
}

// AccessLog writes one zerolog line per request with sensitive query values
// masked. GET /user carries a password in its query string.
func AccessLog(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Str("ua", v.UserAgent).
				Str("query", maskQuery(c.QueryParams())).
				Msg("http request")
			return nil
		},
	})
}

func maskQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	masked := make(url.Values, len(q))
	for k, v := range q {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			masked[k] = []string{"****"}
			continue
		}
		masked[k] = v
	}
	return masked.Encode()
}
