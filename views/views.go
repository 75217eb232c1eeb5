// Package views holds the site's templ components.
package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
)

// Funcs returns the site's components wired into spacetraveling.ViewFuncs.
func Funcs(site spacetraveling.SiteConfig) spacetraveling.ViewFuncs {
	return spacetraveling.ViewFuncs{
		Home:           Home,
		MorePosts:      MorePosts,
		LoadMoreFailed: LoadMoreFailed,
		Post:           Post,
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return AdminLogin(site, showError, csrfToken)
		},
		AdminDashboard: AdminDashboard,
		NotFound: func() templ.Component {
			return NotFound(site)
		},
		ServerError: func() templ.Component {
			return ServerError(site)
		},
	}
}
