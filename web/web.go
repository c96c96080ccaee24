// Package web is the server-side router that renders the blog.
// Pages are driven by the controllers in internal/controller, the web package
// only turns requests into intents and controller state into HTML.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/config"
	"github.com/KiloProjects/blogfront/internal/controller"
	"github.com/KiloProjects/blogfront/internal/session"
	"github.com/benbjohnson/hashfs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/schema"
	"github.com/klauspost/compress/gzhttp"
	"github.com/riandyrn/otelchi"
)

//go:embed templ
var templateDir embed.FS

//go:embed static
var staticDir embed.FS

var fsys = hashfs.NewFS(mustSub(staticDir, "static"))

var decoder *schema.Decoder

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// API is everything the pages need from the remote blog API
type API interface {
	controller.ListingAPI
	controller.DetailAPI
	controller.EditorAPI
	controller.LoginAPI

	CreateCategory(ctx context.Context, token string, name string) (*blogfront.Category, error)
	DeleteCategory(ctx context.Context, token string, id string) error
}

// Sessions is satisfied by *session.Manager
type Sessions interface {
	controller.SessionStarter
	Get(ctx context.Context, id string) (*session.Session, error)
	End(ctx context.Context, id string) error
}

type Options struct {
	// PublicURL is used to build absolute links for sharing
	PublicURL    string
	SecureCookie bool
}

// Web is the struct representing this whole package
type Web struct {
	api      API
	sessions Sessions

	publicURL    string
	secureCookie bool
}

func NewWeb(api API, sessions Sessions, opts Options) *Web {
	return &Web{
		api:          api,
		sessions:     sessions,
		publicURL:    strings.TrimSuffix(opts.PublicURL, "/"),
		secureCookie: opts.SecureCookie,
	}
}

// Handler returns the compressed, instrumented router
func (rt *Web) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(otelchi.Middleware("blogfront", otelchi.WithChiRoutes(r)))
	r.Use(rt.initSession)

	r.Handle("/static/*", http.StripPrefix("/static/", hashfs.FileServer(fsys)))

	r.Get("/", rt.index())
	r.With(rt.mustBeAuthed, rt.draftsEnabled).Get("/drafts", rt.drafts())

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", rt.categories())
		r.With(rt.mustBeAuthed).Post("/", rt.createCategory())
		r.With(rt.mustBeAuthed).Post("/{id}/delete", rt.deleteCategory())
	})
	r.Get("/tags", rt.tags())

	r.Route("/posts", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.mustBeAuthed)
			r.Get("/new", rt.editPost())
			r.Post("/new", rt.savePost())
			r.Post("/new/cancel", rt.cancelEdit())
		})
		r.Route("/{id}", func(r chi.Router) {
			r.Use(rt.ValidatePostID)
			r.Get("/", rt.post())
			r.Get("/{slug}", rt.post())
			r.Get("/share", rt.sharePage())
			r.Post("/share", rt.sharePost())
			r.Group(func(r chi.Router) {
				r.Use(rt.mustBeAuthed)
				r.Post("/delete", rt.deletePost())
				r.Get("/edit", rt.editPost())
				r.Post("/edit", rt.savePost())
				r.Post("/edit/cancel", rt.cancelEdit())
			})
		})
	})

	r.With(rt.mustBeVisitor).Get("/login", rt.loginPage())
	r.With(rt.mustBeVisitor).Post("/login", rt.login())
	r.Post("/logout", rt.logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.With(rt.previewEnabled).Post("/preview", rt.preview)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.statusPage(w, r, http.StatusNotFound, "Page not found")
	})

	return gzhttp.GzipHandler(r)
}

func (rt *Web) draftsEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !config.DraftsEnabled.Value() {
			rt.statusPage(w, r, http.StatusNotFound, blogfront.ErrFeatureDisabled.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Web) previewEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !config.PreviewAPI.Value() {
			errorData(w, blogfront.ErrFeatureDisabled.Error(), http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func init() {
	decoder = schema.NewDecoder()
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
	decoder.ZeroEmpty(true)
}

// absURL turns a site path into a link that works outside the site
func (rt *Web) absURL(r *http.Request, path string) string {
	if rt.publicURL != "" {
		return rt.publicURL + path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}

func logRenderErr(r *http.Request, what string, err error) {
	slog.WarnContext(r.Context(), "Error rendering "+what, slog.Any("err", err), slog.String("path", r.URL.Path))
}
