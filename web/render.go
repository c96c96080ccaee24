package web

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/util"
	"github.com/a-h/templ"
)

// runTemplate renders the "content" template of hTempl inside the layout.
func (rt *Web) runTemplate(w http.ResponseWriter, r *http.Request, code int, hTempl *template.Template, data any) {
	hTempl, err := hTempl.Clone()
	if err != nil {
		fmt.Fprintf(w, "Error cloning template, report to admin: %s", err)
		return
	}
	hTempl.Funcs(rt.requestFuncs(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)

	var title string
	if hTempl.Lookup("title") != nil {
		var titleBuf strings.Builder
		if err := hTempl.ExecuteTemplate(&titleBuf, "title", data); err != nil {
			logRenderErr(r, "title template", err)
		}
		title = titleBuf.String()
	}

	rt.runLayout(w, r, &LayoutParams{
		Title:   title,
		Path:    r.URL.Path,
		Session: util.Session(r),
		Content: templ.FromGoHTML(hTempl.Lookup("content"), data),
	})
}

func (rt *Web) runTempl(w http.ResponseWriter, r *http.Request, hTempl *template.Template, data any) {
	rt.runTemplate(w, r, http.StatusOK, hTempl, data)
}

func (rt *Web) runLayout(w http.ResponseWriter, r *http.Request, params *LayoutParams) {
	layout, err := layoutTempl.Clone()
	if err != nil {
		fmt.Fprintf(w, "Error cloning layout, report to admin: %s", err)
		return
	}
	layout.Funcs(rt.requestFuncs(r))
	if params.Content == nil {
		params.Content = templ.NopComponent
	}
	if err := layout.Execute(w, params); err != nil {
		logRenderErr(r, "layout", err)
		fmt.Fprintf(w, "Error rendering layout, report to admin: %s", err)
	}
}

func (rt *Web) requestFuncs(r *http.Request) template.FuncMap {
	authed := util.IsAuthed(r)
	return template.FuncMap{
		"authed": func() bool {
			return authed
		},
		"reqPath": func() string {
			return r.URL.Path
		},
		"renderComponent": func(c templ.Component) (template.HTML, error) {
			return templ.ToGoHTML(r.Context(), c)
		},
	}
}

func (rt *Web) statusPage(w http.ResponseWriter, r *http.Request, code int, message string) {
	rt.runTemplate(w, r, code, statusTempl, &StatusParams{Code: code, Message: message})
}

// apiStatus picks the response code for a page whose API calls ended in err
func apiStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if code := blogfront.ErrorCode(err); code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}

func logAPIErr(r *http.Request, what string, err error) {
	if err != nil {
		slog.DebugContext(r.Context(), what, slog.Any("err", err), slog.String("path", r.URL.Path))
	}
}
