package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
)

// NotFound renders the 404 page.
func NotFound(site spacetraveling.SiteConfig) templ.Component {
	meta := spacetraveling.PageMeta{Title: "Página não encontrada | " + site.Name}
	return component(layout(site, meta, "", func(_ context.Context, h *html) {
		h.raw(`<section class="error"><h1>404</h1>`)
		h.raw("<p>Este post não existe ou foi removido.</p>")
		h.raw(`<a href="/">Voltar para o início</a></section>` + "\n")
	}))
}

// ServerError renders the 5xx page.
func ServerError(site spacetraveling.SiteConfig) templ.Component {
	meta := spacetraveling.PageMeta{Title: "Erro | " + site.Name}
	return component(layout(site, meta, "", func(_ context.Context, h *html) {
		h.raw(`<section class="error"><h1>Algo deu errado</h1>`)
		h.raw("<p>Não foi possível carregar o conteúdo agora. Tente novamente em instantes.</p>")
		h.raw(`<a href="/">Voltar para o início</a></section>` + "\n")
	}))
}
