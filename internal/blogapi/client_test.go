package blogapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KiloProjects/blogfront"
)

const (
	postID = "3f6c1f9e-2b7a-4c1d-9a43-0d1e5b7c8a21"
	catID  = "8a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	tagA   = "11111111-2222-4333-8444-555555555555"
	tagB   = "66666666-7777-4888-9999-aaaaaaaaaaaa"
)

const postJSON = `{
	"id": "` + postID + `",
	"title": "Hello",
	"content": "<p>Body</p>",
	"author": {"id": "u1", "name": "Ana Pop"},
	"category": {"id": "` + catID + `", "name": "Go"},
	"tags": [{"id": "` + tagA + `", "name": "a"}, {"id": "` + tagA + `", "name": "a"}, {"id": "` + tagB + `", "name": "b"}],
	"readingTime": 3,
	"createdAt": "2024-03-01T10:20:30.123456",
	"updatedAt": "2024-03-02T10:20:30Z",
	"status": "PUBLISHED"
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/v1", 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestListPosts(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/posts" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("categoryId") != catID || r.URL.Query().Get("tagId") != tagB {
			t.Errorf("Filter not sent: %q", r.URL.RawQuery)
		}
		w.Write([]byte("[" + postJSON + "]"))
	})

	posts, err := c.ListPosts(context.Background(), blogfront.PostFilter{CategoryID: catID, TagID: tagB})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	p := posts[0]
	if p.Category == nil || p.Category.ID != catID {
		t.Fatalf("Category not converted: %#v", p.Category)
	}
	if len(p.Tags) != 2 {
		t.Fatalf("Expected duplicated tags to be dropped, got %d tags", len(p.Tags))
	}
	if want := time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC); !p.CreatedAt.Equal(want) {
		t.Fatalf("Expected creation date %v, got %v", want, p.CreatedAt)
	}
	if p.Author == nil || p.Author.Name != "Ana Pop" || p.ReadingTime != 3 || p.Status != blogfront.PostStatusPublished {
		t.Fatalf("Post not converted: %#v", p)
	}
}

func TestListPostsNoFilter(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("Expected no query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte("[]"))
	})
	posts, err := c.ListPosts(context.Background(), blogfront.PostFilter{})
	if err != nil || len(posts) != 0 {
		t.Fatalf("Expected empty list, got %v, %v", posts, err)
	}
}

func TestInvalidPayloads(t *testing.T) {
	var cases = map[string]string{
		"noCategory":  `{"id": "` + postID + `", "title": "x", "content": "", "status": "DRAFT"}`,
		"badStatus":   `{"id": "` + postID + `", "title": "x", "category": {"id": "` + catID + `", "name": "c"}, "status": "HIDDEN"}`,
		"badTag":      `{"id": "` + postID + `", "title": "x", "category": {"id": "` + catID + `", "name": "c"}, "tags": [{"id": "", "name": ""}], "status": "DRAFT"}`,
		"badDate":     `{"id": "` + postID + `", "title": "x", "category": {"id": "` + catID + `", "name": "c"}, "createdAt": "yesterday", "status": "DRAFT"}`,
		"notAnObject": `[1, 2]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			if _, err := c.Post(context.Background(), postID); err == nil {
				t.Fatal("Expected the payload to be rejected")
			}
		})
	}
}

func TestErrorResponses(t *testing.T) {
	var cases = map[string]struct {
		Code int
		Body string
		Text string
	}{
		"message":   {Code: 404, Body: `{"status": 404, "message": "Post not found"}`, Text: "Post not found"},
		"noMessage": {Code: 500, Body: `oops`, Text: "Internal Server Error"},
		"fields":    {Code: 400, Body: `{"message": "Validation failed", "errors": [{"field": "title", "message": "too short"}]}`, Text: "Validation failed (title: too short)"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.Code)
				w.Write([]byte(c.Body))
			})
			_, err := client.Post(context.Background(), postID)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if blogfront.ErrorCode(err) != c.Code {
				t.Fatalf("Expected code %d, got %d", c.Code, blogfront.ErrorCode(err))
			}
			if err.Error() != c.Text {
				t.Fatalf("Expected text %q, got %q", c.Text, err.Error())
			}
		})
	}
}

func TestNonUUIDMakesNoCall(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	if _, err := c.Post(context.Background(), "../admin"); !errors.Is(err, blogfront.ErrNotFound) {
		t.Fatalf("Expected not found, got %v", err)
	}
	if err := c.DeletePost(context.Background(), "tok", ""); !errors.Is(err, blogfront.ErrNotFound) {
		t.Fatalf("Expected not found, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("Expected no calls, got %d", calls.Load())
	}
}

func TestCreateAndUpdatePost(t *testing.T) {
	t.Parallel()
	var got []postRequest
	var methods, paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var req postRequest
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &req); err != nil {
			t.Errorf("Invalid body: %v", err)
		}
		got = append(got, req)
		methods = append(methods, r.Method)
		paths = append(paths, r.URL.Path)
		w.Write([]byte(postJSON))
	})

	in := blogfront.PostInput{
		Title:      "Hello",
		Content:    "<p>Body</p>",
		CategoryID: catID,
		TagIDs:     []string{tagA, tagA, tagB},
		Status:     blogfront.PostStatusDraft,
	}
	if _, err := c.CreatePost(context.Background(), "tok", in); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := c.UpdatePost(context.Background(), "tok", postID, in); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	if methods[0] != http.MethodPost || paths[0] != "/api/v1/posts" || got[0].ID != "" {
		t.Fatalf("Unexpected create call: %s %s %#v", methods[0], paths[0], got[0])
	}
	if methods[1] != http.MethodPut || paths[1] != "/api/v1/posts/"+postID || got[1].ID != postID {
		t.Fatalf("Unexpected update call: %s %s %#v", methods[1], paths[1], got[1])
	}
	if len(got[0].TagIDs) != 2 || got[0].CategoryID != catID || got[0].Status != "DRAFT" {
		t.Fatalf("Unexpected request body: %#v", got[0])
	}
}

func TestPrivilegedCallsNeedToken(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	ctx := context.Background()
	if _, err := c.Drafts(ctx, ""); !IsUnauthorized(err) {
		t.Fatalf("Drafts: expected unauthorized, got %v", err)
	}
	if _, err := c.CreatePost(ctx, "", blogfront.PostInput{}); !IsUnauthorized(err) {
		t.Fatalf("CreatePost: expected unauthorized, got %v", err)
	}
	if err := c.DeleteCategory(ctx, "", catID); !IsUnauthorized(err) {
		t.Fatalf("DeleteCategory: expected unauthorized, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("Expected no calls, got %d", calls.Load())
	}
}

func TestInvalidInputMakesNoCall(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	ctx := context.Background()
	if _, err := c.CreatePost(ctx, "tok", blogfront.PostInput{Title: "x", Content: "y", Status: blogfront.PostStatusDraft}); err == nil {
		t.Fatal("Expected missing category to be rejected")
	}
	if _, err := c.CreatePost(ctx, "tok", blogfront.PostInput{Title: "x", Content: "y", CategoryID: "nope", Status: blogfront.PostStatusDraft}); err == nil {
		t.Fatal("Expected malformed category id to be rejected")
	}
	if _, err := c.Login(ctx, "not an email", "pwd"); err == nil {
		t.Fatal("Expected invalid email to be rejected")
	}
	if _, err := c.Login(ctx, "ana@example.com", ""); err == nil {
		t.Fatal("Expected empty password to be rejected")
	}
	if calls.Load() != 0 {
		t.Fatalf("Expected no calls, got %d", calls.Load())
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Invalid body: %v", err)
		}
		if r.URL.Path != "/api/v1/auth/login" || req.Email != "ana@example.com" || req.Password != "secret" {
			t.Errorf("Unexpected login call %s %#v", r.URL.Path, req)
		}
		w.Write([]byte(`{"token": "jwt", "expiresIn": 86400}`))
	})
	resp, err := c.Login(context.Background(), " ana@example.com ", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token != "jwt" || resp.ExpiresIn != 86400 {
		t.Fatalf("Unexpected response %#v", resp)
	}
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": 401, "message": "Incorrect username or password"}`))
	})
	_, err := c.Login(context.Background(), "ana@example.com", "wrong")
	if !IsUnauthorized(err) || err.Error() != "Incorrect username or password" {
		t.Fatalf("Expected the server message, got %v", err)
	}
}

func TestTaxonomy(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/categories":
			w.Write([]byte(`[{"id": "` + catID + `", "name": "Go", "postCount": 4}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/tags":
			w.Write([]byte(`[{"id": "` + tagA + `", "name": "a", "postCount": 1}, {"id": "` + tagB + `", "name": "b"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/categories":
			var req categoryRequest
			json.NewDecoder(r.Body).Decode(&req)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": "` + catID + `", "name": "` + req.Name + `", "postCount": 0}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/categories/"+catID:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("Unexpected call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})
	ctx := context.Background()

	cats, err := c.Categories(ctx)
	if err != nil || len(cats) != 1 || cats[0].PostCount != 4 {
		t.Fatalf("Unexpected categories %v, %v", cats, err)
	}
	tags, err := c.Tags(ctx)
	if err != nil || len(tags) != 2 {
		t.Fatalf("Unexpected tags %v, %v", tags, err)
	}
	cat, err := c.CreateCategory(ctx, "tok", "  Rust ")
	if err != nil || cat.Name != "Rust" {
		t.Fatalf("Unexpected created category %v, %v", cat, err)
	}
	if err := c.DeleteCategory(ctx, "tok", catID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
}
