package notice

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dental/clinic/internal/platform/auth"
)

type resource struct {
	singular string
	plural   string
}

var resources = map[string]resource{
	"appointments": {"Appointment", "appointments"},
	"patients":     {"Patient", "patients"},
	"doctors":      {"Doctor", "doctors"},
	"nurses":       {"Nurse", "nurses"},
	"supplies":     {"Supply", "supplies"},
	"transactions": {"Transaction", "transactions"},
	"ehr":          {"EHR", "EHR data"},
	"xray-images":  {"Image", "images"},
	"calendar":     {"Calendar", "calendar"},
	"dashboard":    {"Dashboard", "dashboard"},
}

// ehrSaveRoute is the one editor-session route that reports its outcome.
const ehrSaveRoute = "/ehr/sessions/:sid/save"

// Routes under these segments never raise banners: editor keystrokes and
// the banner endpoints themselves.
var silent = map[string]bool{
	"sessions": true,
	"notices":  true,
}

// Banners publishes an error notice when a request fails on the server side
// and a success notice when a mutation succeeds. Validation failures (4xx)
// stay inline in the form and produce no banner.
func Banners(pub *Publisher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// a panic still raises the failure banner before Recovery sees it
			defer func() {
				if r := recover(); r != nil {
					announce(pub, c, http.StatusInternalServerError)
					panic(r)
				}
			}()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			announce(pub, c, status)
			return err
		}
	}
}

func announce(pub *Publisher, c echo.Context, status int) {
	ctx := c.Request().Context()
	actor := auth.ActorFromContext(ctx)
	if actor == "" {
		return
	}
	msg, level, ok := BannerFor(c.Request().Method, c.Path(), status)
	if !ok {
		return
	}
	if level == LevelError {
		pub.Error(ctx, actor, msg)
	} else {
		pub.Success(ctx, actor, msg)
	}
}

// BannerFor returns the banner text for a finished request on a route
// template, or ok=false when the request should not raise one.
func BannerFor(method, route string, status int) (string, Level, bool) {
	if method == http.MethodPost && strings.HasSuffix(route, ehrSaveRoute) {
		if status >= 500 {
			return "Failed to save EHR", LevelError, true
		}
		if status >= 200 && status < 300 {
			return "EHR saved successfully", LevelSuccess, true
		}
		return "", "", false
	}

	res, ok := resourceFor(route)
	if !ok {
		return "", "", false
	}

	if status >= 500 {
		switch method {
		case http.MethodGet:
			return "Failed to load " + res.plural, LevelError, true
		case http.MethodDelete:
			return "Delete failed", LevelError, true
		default:
			return "Operation failed", LevelError, true
		}
	}

	if status < 200 || status >= 300 {
		return "", "", false
	}

	switch method {
	case http.MethodPost:
		if res.singular == "Transaction" {
			return "Transaction recorded successfully", LevelSuccess, true
		}
		if res.singular == "Image" {
			return "Image uploaded successfully", LevelSuccess, true
		}
		return res.singular + " created successfully", LevelSuccess, true
	case http.MethodPut, http.MethodPatch:
		return res.singular + " updated successfully", LevelSuccess, true
	case http.MethodDelete:
		return res.singular + " deleted successfully", LevelSuccess, true
	}
	return "", "", false
}

// resourceFor picks the last known resource segment of the route, so
// /supplies/:id/transactions resolves to transactions.
func resourceFor(route string) (resource, bool) {
	var found resource
	ok := false
	for _, seg := range strings.Split(strings.Trim(route, "/"), "/") {
		if silent[seg] {
			return resource{}, false
		}
		if r, known := resources[seg]; known {
			found, ok = r, true
		}
	}
	return found, ok
}
