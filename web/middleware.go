package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/KiloProjects/blogfront/internal/session"
	"github.com/KiloProjects/blogfront/internal/util"
	"github.com/go-chi/chi/v5"
)

// ValidatePostID makes sure the post ID looks like one before anything is fetched
func (rt *Web) ValidatePostID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" || strings.IndexFunc(id, func(r rune) bool {
			return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_')
		}) >= 0 {
			rt.statusPage(w, r, http.StatusBadRequest, "Invalid post ID")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), util.PostIDKey, id)))
	})
}

func (rt *Web) mustBeAuthed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !util.IsAuthed(r) {
			rt.toLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Web) mustBeVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if util.IsAuthed(r) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// toLogin sends the user to the login page, coming back to where they were afterwards
func (rt *Web) toLogin(w http.ResponseWriter, r *http.Request) {
	back := r.URL.Path
	if r.Method == http.MethodGet && r.URL.RawQuery != "" {
		back += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?back="+url.QueryEscape(back), http.StatusSeeOther)
}

func (rt *Web) initSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := rt.sessions.Get(r.Context(), cookie.Value)
		if err != nil || sess == nil {
			// Stale cookie, drop it
			rt.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), util.SessionKey, sess)))
	})
}

func (rt *Web) setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   rt.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (rt *Web) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rt.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// expireSession is used when the API no longer accepts the session's token
func (rt *Web) expireSession(w http.ResponseWriter, r *http.Request) {
	if sess := util.Session(r); sess != nil {
		rt.sessions.End(r.Context(), sess.ID)
	}
	rt.clearSessionCookie(w)
	rt.toLogin(w, r)
}
