package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/integrations/prometheus"
	"github.com/KiloProjects/blogfront/internal/blogapi"
	"github.com/KiloProjects/blogfront/internal/config"
	"github.com/KiloProjects/blogfront/internal/controller"
	"github.com/KiloProjects/blogfront/internal/util"
	"github.com/go-chi/chi/v5"
)

// redirector is the Navigator of a single request
type redirector struct {
	target string
}

func (n *redirector) Navigate(path string) {
	n.target = path
}

// follow sends the browser to the navigated-to page, if any
func (n *redirector) follow(w http.ResponseWriter, r *http.Request) bool {
	if n.target == "" {
		return false
	}
	http.Redirect(w, r, n.target, http.StatusSeeOther)
	return true
}

type listingQuery struct {
	Page     int    `json:"page"`
	Sort     string `json:"sort"`
	Category string `json:"category"`
	Tag      string `json:"tag"`
}

// mountListing builds the listing for the request's filters and fetches it
func (rt *Web) mountListing(r *http.Request, mode controller.ListingMode) (*controller.Listing, error) {
	var q listingQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		slog.DebugContext(r.Context(), "Invalid listing query", slog.Any("err", err))
	}
	c := controller.NewListing(rt.api, controller.ListingOptions{
		Mode:    mode,
		Token:   util.Token(r),
		PerPage: config.PostsPerPage.Value(),
	})
	ctx := r.Context()
	c.SelectCategory(ctx, q.Category)
	if q.Tag != "" {
		c.SelectTag(ctx, q.Tag)
	}
	c.SetSort(ctx, q.Sort)
	c.SetPage(ctx, q.Page)
	return c, c.Mount(ctx)
}

func (rt *Web) listing(mode controller.ListingMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := rt.mountListing(r, mode)
		defer c.Unmount()
		if mode == controller.ModeDrafts && blogapi.IsUnauthorized(err) {
			rt.expireSession(w, r)
			return
		}
		logAPIErr(r, "Listing fetch failed", err)
		rt.runTemplate(w, r, apiStatus(err), indexTempl, &ListingParams{Listing: c, Drafts: mode == controller.ModeDrafts})
	}
}

func (rt *Web) index() http.HandlerFunc {
	return rt.listing(controller.ModePublished)
}

func (rt *Web) drafts() http.HandlerFunc {
	return rt.listing(controller.ModeDrafts)
}

func (rt *Web) taxonomyPage(w http.ResponseWriter, r *http.Request, code int, params *TaxonomyParams) {
	c := controller.NewTaxonomy(rt.api)
	err := c.Mount(r.Context())
	logAPIErr(r, "Taxonomy fetch failed", err)
	if code == http.StatusOK {
		code = apiStatus(err)
	}
	params.Taxonomy = c
	if strings.HasPrefix(r.URL.Path, "/tags") {
		rt.runTemplate(w, r, code, tagsTempl, params)
		return
	}
	rt.runTemplate(w, r, code, categoriesTempl, params)
}

func (rt *Web) categories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt.taxonomyPage(w, r, http.StatusOK, &TaxonomyParams{})
	}
}

func (rt *Web) tags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt.taxonomyPage(w, r, http.StatusOK, &TaxonomyParams{})
	}
}

func (rt *Web) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form struct {
			Name string `json:"name"`
		}
		r.ParseForm()
		if err := decoder.Decode(&form, r.PostForm); err != nil {
			rt.statusPage(w, r, http.StatusBadRequest, "Invalid form")
			return
		}
		cat, err := rt.api.CreateCategory(r.Context(), util.Token(r), form.Name)
		if blogapi.IsUnauthorized(err) {
			rt.expireSession(w, r)
			return
		}
		if err != nil {
			slog.InfoContext(r.Context(), "Couldn't create category", slog.Any("err", err))
			rt.taxonomyPage(w, r, apiStatus(err), &TaxonomyParams{
				FormErr: blogfront.ErrorText(err, "Failed to create the category. Please try again."),
				Name:    form.Name,
			})
			return
		}
		slog.InfoContext(r.Context(), "Created category", slog.Any("category", cat))
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
	}
}

func (rt *Web) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		err := rt.api.DeleteCategory(r.Context(), util.Token(r), id)
		if blogapi.IsUnauthorized(err) {
			rt.expireSession(w, r)
			return
		}
		if err != nil {
			slog.InfoContext(r.Context(), "Couldn't delete category", slog.String("id", id), slog.Any("err", err))
			rt.taxonomyPage(w, r, apiStatus(err), &TaxonomyParams{
				FormErr: blogfront.ErrorText(err, "Failed to delete the category. Please try again later."),
			})
			return
		}
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
	}
}

func (rt *Web) mountDetail(r *http.Request, nav controller.Navigator) (*controller.Detail, error) {
	c := controller.NewDetail(rt.api, nav, util.Token(r), util.PostID(r))
	return c, c.Mount(r.Context())
}

func (rt *Web) post() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := rt.mountDetail(r, &redirector{})
		defer c.Unmount()
		logAPIErr(r, "Post fetch failed", err)

		// Keep the slug in the URL up to date with the title
		if post := c.Post(); post != nil && r.Method == http.MethodGet {
			if slug := chi.URLParam(r, "slug"); slug != "" && post.Slug() != "" && slug != post.Slug() {
				http.Redirect(w, r, "/posts/"+post.ID+"/"+post.Slug(), http.StatusMovedPermanently)
				return
			}
		}

		params := &DetailParams{Detail: c}
		if r.FormValue("copied") == "1" {
			params.Copied = rt.absURL(r, "/posts/"+util.PostID(r))
		}
		rt.runTemplate(w, r, apiStatus(err), postTempl, params)
	}
}

func (rt *Web) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nav := &redirector{}
		c, err := rt.mountDetail(r, nav)
		defer c.Unmount()
		if err != nil {
			rt.runTemplate(w, r, apiStatus(err), postTempl, &DetailParams{Detail: c})
			return
		}

		params := &DetailParams{Detail: c}
		confirmed := r.FormValue("confirm") == "yes"
		err = c.Delete(r.Context(), controller.ConfirmFunc(func(prompt string) bool {
			if !confirmed {
				params.Prompt = prompt
			}
			return confirmed
		}))
		if blogapi.IsUnauthorized(err) {
			rt.expireSession(w, r)
			return
		}
		if nav.follow(w, r) {
			return
		}
		rt.runTemplate(w, r, apiStatus(err), postTempl, params)
	}
}

// pageSharer keeps the share data so the share targets page can show it
type pageSharer struct {
	data *controller.ShareData
}

func (s *pageSharer) Share(_ context.Context, data controller.ShareData) error {
	s.data = &data
	return nil
}

// flashClipboard hands the copied link to the next page view
type flashClipboard struct {
	text string
}

func (c *flashClipboard) WriteText(_ context.Context, text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	c.text = text
	return nil
}

// sharePost is reached when the browser had no native share to offer.
// The link gets copied and the post page shows it.
func (rt *Web) sharePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := rt.mountDetail(r, &redirector{})
		defer c.Unmount()
		if err != nil {
			rt.runTemplate(w, r, apiStatus(err), postTempl, &DetailParams{Detail: c})
			return
		}
		clip := &flashClipboard{}
		c.Share(r.Context(), nil, clip, rt.absURL(r, "/posts/"+util.PostID(r)))
		target := "/posts/" + util.PostID(r)
		if clip.text != "" {
			target += "?copied=1"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// sharePage lists the share targets of a post
func (rt *Web) sharePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := rt.mountDetail(r, &redirector{})
		defer c.Unmount()
		if err != nil {
			rt.runTemplate(w, r, apiStatus(err), postTempl, &DetailParams{Detail: c})
			return
		}
		sharer := &pageSharer{}
		if !c.Share(r.Context(), sharer, &flashClipboard{}, rt.absURL(r, "/posts/"+util.PostID(r))) {
			rt.statusPage(w, r, http.StatusNotFound, "Post not found")
			return
		}
		rt.runTempl(w, r, shareTempl, &ShareParams{Post: c.Post(), Data: *sharer.data})
	}
}

type postForm struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID string   `json:"category_id"`
	TagIDs     []string `json:"tag_ids"`
	Status     string   `json:"status"`
}

func (f postForm) input() blogfront.PostInput {
	return blogfront.PostInput{
		Title:      f.Title,
		Content:    f.Content,
		CategoryID: f.CategoryID,
		TagIDs:     f.TagIDs,
		Status:     blogfront.PostStatus(f.Status),
	}
}

func editAction(id string) string {
	if id == "" {
		return "/posts/new"
	}
	return "/posts/" + id + "/edit"
}

func (rt *Web) mountEditor(r *http.Request, nav controller.Navigator) (*controller.Editor, error) {
	c := controller.NewEditor(rt.api, nav, util.Token(r), util.PostID(r))
	return c, c.Mount(r.Context())
}

func (rt *Web) editPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := rt.mountEditor(r, &redirector{})
		defer c.Unmount()
		logAPIErr(r, "Editor fetch failed", err)
		rt.runTemplate(w, r, apiStatus(err), editTempl, &EditParams{Editor: c, Action: editAction(util.PostID(r))})
	}
}

func (rt *Web) savePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form postForm
		r.ParseForm()
		if err := decoder.Decode(&form, r.PostForm); err != nil {
			rt.statusPage(w, r, http.StatusBadRequest, "Invalid form")
			return
		}

		nav := &redirector{}
		c, err := rt.mountEditor(r, nav)
		defer c.Unmount()
		logAPIErr(r, "Editor fetch failed", err)

		err = c.Submit(r.Context(), form.input())
		if blogapi.IsUnauthorized(err) {
			rt.expireSession(w, r)
			return
		}
		if nav.follow(w, r) {
			return
		}
		code := apiStatus(err)
		if len(c.FieldErrors()) > 0 {
			code = http.StatusBadRequest
		}
		rt.runTemplate(w, r, code, editTempl, &EditParams{Editor: c, Action: editAction(util.PostID(r))})
	}
}

func (rt *Web) cancelEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nav := &redirector{}
		controller.NewEditor(rt.api, nav, util.Token(r), util.PostID(r)).Cancel()
		nav.follow(w, r)
	}
}

func (rt *Web) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := controller.NewLogin(rt.api, rt.sessions, &redirector{}, r.FormValue("back"))
		rt.runTempl(w, r, loginTempl, &LoginParams{Login: c})
	}
}

func (rt *Web) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Back     string `json:"back"`
		}
		r.ParseForm()
		if err := decoder.Decode(&form, r.PostForm); err != nil {
			rt.statusPage(w, r, http.StatusBadRequest, "Invalid form")
			return
		}

		nav := &redirector{}
		c := controller.NewLogin(rt.api, rt.sessions, nav, form.Back)
		sess, err := c.Submit(r.Context(), form.Email, form.Password)
		if err != nil {
			code := apiStatus(err)
			if len(c.FieldErrors()) > 0 {
				code = http.StatusBadRequest
			}
			rt.runTemplate(w, r, code, loginTempl, &LoginParams{Login: c})
			return
		}
		rt.setSessionCookie(w, sess)
		prometheus.SessionStarted()
		slog.InfoContext(r.Context(), "User logged in", slog.Any("session", sess))
		nav.follow(w, r)
	}
}

func (rt *Web) logout(w http.ResponseWriter, r *http.Request) {
	if sess := util.Session(r); sess != nil {
		if err := rt.sessions.End(r.Context(), sess.ID); err != nil {
			slog.WarnContext(r.Context(), "Couldn't end session", slog.Any("err", err))
		}
	}
	rt.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
