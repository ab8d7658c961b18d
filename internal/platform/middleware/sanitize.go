package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const maxHeaderValueSize = 8 << 10

var (
	// logged only; the repositories bind every value as a parameter
	sqlPattern = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1)`)

	scriptPattern = regexp.MustCompile(`(?i)(<script|javascript\s*:|\bon\w+\s*=)`)
)

// Sanitize rejects requests whose path, path parameters, query string or
// headers carry traversal sequences, null bytes, header injection or script
// markup. Free-text search terms pass through unless they contain script.
// It runs after routing, so path parameters such as :entryId are checked
// by name.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			raw := req.URL.EscapedPath()

			if hasTraversal(req.URL.Path) || hasTraversal(raw) {
				return rejected("path traversal is not allowed")
			}
			if hasNullByte(req.URL.Path) || hasNullByte(raw) {
				return rejected("null bytes are not allowed in the path")
			}

			for name, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValueSize {
						return rejected("header " + name + " is too large")
					}
					if strings.ContainsAny(v, "\r\n") {
						return rejected("header " + name + " contains a line break")
					}
				}
			}

			for i, name := range c.ParamNames() {
				v := c.ParamValues()[i]
				if hasNullByte(v) || hasTraversal(v) || scriptPattern.MatchString(v) {
					return rejected("invalid value for " + name)
				}
			}

			for key, values := range req.URL.Query() {
				if hasNullByte(key) || scriptPattern.MatchString(key) {
					return rejected("invalid query parameter name")
				}
				for _, v := range values {
					if hasNullByte(v) {
						return rejected("null bytes are not allowed in " + key)
					}
					if scriptPattern.MatchString(v) {
						return rejected("script content is not allowed in " + key)
					}
					if sqlPattern.MatchString(v) {
						logger.Warn().
							Str("param", key).
							Str("route", c.Path()).
							Str("remote_ip", c.RealIP()).
							Msg("suspicious SQL in query parameter")
					}
				}
			}

			return next(c)
		}
	}
}

func rejected(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func hasTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

func hasNullByte(s string) bool {
	return strings.ContainsRune(s, 0) || strings.Contains(strings.ToLower(s), "%00")
}
