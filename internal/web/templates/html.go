// Package templates renders the HTML pages of the web UI as templ
// components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes name="value" with value escaped.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func component(body func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		body(ctx, h)
		return h.err
	})
}

const styles = `
body{margin:0;font-family:"Open Sans",Arial,sans-serif;background:#f4f7f6;color:#1a1a1a}
.flag{display:flex;height:6px}.flag div{flex:1}
.g{background:#008a51}.y{background:#fcd116}.r{background:#e81123}
header{background:#004cb3;color:#fff;padding:12px 24px;display:flex;justify-content:space-between;align-items:center}
header h1{margin:0;font-size:18px}
main{max-width:1100px;margin:24px auto;padding:0 16px}
section{background:#fff;border-radius:8px;padding:16px 20px;margin-bottom:20px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
table{border-collapse:collapse;width:100%;font-size:13px}th,td{border-bottom:1px solid #e3e3e3;padding:6px;text-align:left}
.alert{border-left:4px solid #e81123;background:#fdecee;padding:10px 14px;border-radius:4px}
.alert small{color:#666}
.warn{color:#a15c00}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(320px,1fr));gap:16px}
.grid img{width:100%;border-radius:6px;box-shadow:0 2px 6px rgba(0,0,0,.2)}
button,.btn{background:#004cb3;color:#fff;border:0;border-radius:4px;padding:8px 14px;cursor:pointer;text-decoration:none;font-size:14px}
input{padding:6px;margin:4px 0}
`

func layout(title string, user string, body func(ctx context.Context, h *htmlWriter)) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="fr"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw(" | Card Creator Pro</title><style>" + styles + "</style></head><body>")
		h.raw(`<div class="flag"><div class="g"></div><div class="y"></div><div class="r"></div></div>`)
		h.raw(`<header><h1><a href="/" style="color:#fff;text-decoration:none">Mairie de Cotonou · Cartes B2</a></h1>`)
		if user != "" {
			h.raw("<div>")
			h.text(user)
			h.raw(` <button id="logout">Déconnexion</button></div>`)
		}
		h.raw("</header><main>")
		body(ctx, h)
		h.raw("</main>")
		if user != "" {
			h.raw(`<script>document.getElementById("logout").onclick=async()=>{await fetch("/api/auth/logout",{method:"POST"});location.href="/"}</script>`)
		}
		h.raw("</body></html>")
	})
}

// ErrorAlert renders an error box with its action hint and support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw("<div>")
			h.text(action)
			h.raw("</div>")
		}
		h.raw("<small>Code : ")
		h.text(code)
		h.raw("</small></div>")
	})
}

// ErrorPage wraps ErrorAlert in the page layout.
func ErrorPage(message, action, code string) templ.Component {
	return layout("Erreur", "", func(ctx context.Context, h *htmlWriter) {
		h.raw("<section>")
		if h.err == nil {
			h.err = ErrorAlert(message, action, code).Render(ctx, h.w)
		}
		h.raw(`<p><a class="btn" href="/">Retour</a></p></section>`)
	})
}
