package views

import (
	"context"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/spacetraveling"
)

// AdminLogin renders the password form.
func AdminLogin(site spacetraveling.SiteConfig, showError bool, csrfToken string) templ.Component {
	meta := spacetraveling.PageMeta{Title: "Admin | " + site.Name}
	return component(layout(site, meta, "", func(_ context.Context, h *html) {
		h.raw(`<section class="admin"><h1>Admin</h1>`)
		if showError {
			h.raw(`<p class="error" role="alert">Senha incorreta.</p>`)
		}
		h.raw(`<form method="post" action="/admin/login/">`)
		csrfField(h, csrfToken)
		h.raw(`<label>Senha <input type="password" name="password" autocomplete="current-password" required></label>`)
		h.raw(`<button type="submit">Entrar</button></form></section>` + "\n")
	}))
}

// AdminDashboard lists the mirrored documents and the cache age, with
// buttons to purge the cache and log out.
func AdminDashboard(d spacetraveling.Dashboard) templ.Component {
	meta := spacetraveling.PageMeta{Title: "Admin | " + d.Site.Name}
	return component(layout(d.Site, meta, "", func(_ context.Context, h *html) {
		h.raw(`<section class="admin"><h1>Admin</h1>`)
		if d.Message != "" {
			h.raw(`<p class="message" role="status">`)
			h.text(d.Message)
			h.raw("</p>")
		}

		h.raw(`<p class="cache-age">Cache limpo `)
		h.text(humanize.Time(d.PurgedAt))
		h.raw(".</p>")
		h.raw(`<form method="post" action="/admin/purge/">`)
		csrfField(h, d.CSRFToken)
		h.raw(`<button type="submit">Limpar cache</button></form>`)

		h.raw("<h2>")
		h.text(humanize.Comma(int64(len(d.Documents))) + " documentos espelhados")
		h.raw("</h2>\n")
		h.raw("<table><thead><tr><th>UID</th><th>Tipo</th><th>Publicado</th><th>Tamanho</th><th>Atualizado</th></tr></thead><tbody>\n")
		for _, doc := range d.Documents {
			uid := ""
			if doc.UID != nil {
				uid = *doc.UID
			}
			published := "-"
			if doc.FirstPublicationDate != nil {
				if t, err := spacetraveling.ParsePublicationDate(*doc.FirstPublicationDate); err == nil {
					published = t.Format("2006-01-02")
				}
			}
			h.raw("<tr><td><a")
			h.attr("href", "/post/"+spacetraveling.PathEscape(uid)+"/")
			h.raw(">")
			h.text(uid)
			h.raw("</a></td><td>")
			h.text(doc.Type)
			h.raw("</td><td>")
			h.text(published)
			h.raw("</td><td>")
			h.text(humanize.Bytes(uint64(len(doc.Data))))
			h.raw("</td><td")
			h.attr("title", doc.FetchedAt.Format("2006-01-02 15:04:05"))
			h.raw(">")
			h.text(humanize.Time(doc.FetchedAt))
			h.raw("</td></tr>\n")
		}
		h.raw("</tbody></table>\n")

		h.raw(`<form method="post" action="/admin/logout/">`)
		csrfField(h, d.CSRFToken)
		h.raw(`<button type="submit">Sair</button></form></section>` + "\n")
	}))
}

func csrfField(h *html, token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(">")
}
