package spacetraveling

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func text(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

func joinUIDs(posts []Post) string {
	return strings.Join(uids(posts), ",")
}

// stubViews renders just enough of each page for handler assertions.
var stubViews = ViewFuncs{
	Home: func(p HomePage) templ.Component {
		return text("home posts=%s more=%s", joinUIDs(p.Posts), p.More.Cursor)
	},
	MorePosts: func(posts []Post, more LoadMore) templ.Component {
		return text("more posts=%s next=%s page=%d", joinUIDs(posts), more.Cursor, more.Page)
	},
	LoadMoreFailed: func(retry LoadMore) templ.Component {
		return text("failed retry=%s", retry.Href())
	},
	Post: func(p PostPage) templ.Component {
		return text("post uid=%s readtime=%d banner=%s", p.Post.UID, p.ReadTime, p.BannerURL)
	},
	AdminLogin: func(showError bool, _ string) templ.Component {
		return text("login error=%t", showError)
	},
	AdminDashboard: func(d Dashboard) templ.Component {
		return text("dashboard docs=%d msg=%s", len(d.Documents), d.Message)
	},
	NotFound: func() templ.Component {
		return text("not found")
	},
	ServerError: func() templ.Component {
		return text("server error")
	},
}
