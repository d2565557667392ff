package api

import "strings"

// guardAction is the terminal routing decision for a request, made before
// any handler runs.
type guardAction int

const (
	guardPass guardAction = iota
	guardRedirectLanding
	guardRedirectDashboard
	guardDenyAPI
)

// protectedPagePrefixes are the browser routes that require a session.
var protectedPagePrefixes = []string{"/dashboard", "/tasks", "/settings"}

// publicAPIRoutes can be reached without a session: health, the OAuth
// entry/callback pair, and logout (clearing an absent session is harmless).
var publicAPIRoutes = []string{
	"/api/health",
	"/api/auth/login",
	"/api/auth/callback",
	"/api/auth/logout",
}

// guardDecision maps (path, session present) to the route policy:
// unauthenticated callers bounce off protected pages to the landing page,
// authenticated callers bounce off the landing page to the dashboard, and
// protected API calls without a session are denied outright.
func guardDecision(path string, authenticated bool) guardAction {
	if path == "/" {
		if authenticated {
			return guardRedirectDashboard
		}
		return guardPass
	}

	for _, prefix := range protectedPagePrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			if !authenticated {
				return guardRedirectLanding
			}
			return guardPass
		}
	}

	if strings.HasPrefix(path, "/api/") && !isPublicAPIRoute(path) && !authenticated {
		return guardDenyAPI
	}

	return guardPass
}

func isPublicAPIRoute(path string) bool {
	for _, route := range publicAPIRoutes {
		if path == route {
			return true
		}
	}
	return false
}
