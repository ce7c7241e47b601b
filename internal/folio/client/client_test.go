package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	stack_error "github.com/aisa-it/folio/internal/folio/stack-error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL + "/api/")
	require.NoError(t, err)
	return New(u, WithRetries(0), WithTimeout(5*time.Second))
}

func TestGetBlogDetails(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object content", `{"seo_id":1,"cover_id":2,"cover_url":"c.png","section_id":3,"chinese_title":"T","chinese_description":"D","chinese_content":{"type":"doc","content":[]},"blog_tags":[{"tag_id":5},{"tag_id":6}]}`},
		{"data envelope", `{"status":200,"data":{"seo_id":1,"cover_id":2,"cover_url":"c.png","section_id":3,"chinese_title":"T","chinese_description":"D","chinese_content":"{\"type\":\"doc\",\"content\":[]}","blog_tags":[{"tag_id":5},{"tag_id":6}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/blog/get-blog-details/hello", r.URL.Path)
				assert.Equal(t, "true", r.URL.Query().Get("is_editor"))
				io.WriteString(w, tt.body)
			}))

			details, err := cl.GetBlogDetails(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, int64(1), *details.SeoID)
			assert.Equal(t, int64(3), *details.SectionID)
			assert.Equal(t, "T", *details.Title)
			assert.Equal(t, []int64{5, 6}, details.TagIDs())

			doc := tiptap.NormalizeContent(details.Content)
			require.NotNil(t, doc)
			assert.Equal(t, tiptap.DocType, doc.Type)
		})
	}
}

func TestGetDetailsErrors(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/project/get-project-details/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/api/project/get-project-details/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			io.WriteString(w, "not json")
		}
	}))

	_, err := cl.GetProjectDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, apierrors.ErrDraftNotFound)
	assert.True(t, IsNotFound(err))

	_, err = cl.GetProjectDetails(context.Background(), "broken")
	assert.ErrorIs(t, err, apierrors.ErrUpstream)
	var te *stack_error.TrackerError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, &stack_error.Upstream{
		Method: http.MethodGet,
		Path:   "/api/project/get-project-details/broken",
		Status: http.StatusInternalServerError,
	}, te.Upstream)
	assert.Equal(t, "broken", te.Context["slug"])

	_, err = cl.GetProjectDetails(context.Background(), "garbage")
	assert.ErrorIs(t, err, apierrors.ErrUpstreamBadResponse)
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusOK, te.Upstream.Status)

	_, err = cl.GetProjectDetails(context.Background(), "")
	assert.ErrorIs(t, err, apierrors.ErrDraftNotFound)
}

func TestGetDetailsDeduplicated(t *testing.T) {
	var hits atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		once.Do(func() { close(entered) })
		<-release
		io.WriteString(w, `{"chinese_title":"shared"}`)
	}))

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*dto.BlogDetails, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = cl.GetBlogDetails(context.Background(), "a")
	}()
	<-entered

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cl.GetBlogDetails(context.Background(), "a")
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, "shared", *res.Title)
	}
}

func TestGetDetailsCallerCancel(t *testing.T) {
	release := make(chan struct{})
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		io.WriteString(w, `{}`)
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cl.GetBlogDetails(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWrite(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any

	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody = nil
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		switch r.URL.Path {
		case "/api/blog/create-blog":
			io.WriteString(w, `{"status":200,"message":"ok"}`)
		case "/api/blog/update-blog":
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"status":400,"error":"slug taken"}`)
		case "/api/project/create-project":
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"message":"created"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, `<html>bad gateway</html>`)
		}
	}))

	seo := int64(1)
	resp, err := cl.CreateBlog(context.Background(), dto.BlogRequest{SeoID: &seo, Title: "T", Content: tiptap.EmptyDocument(), Tags: []int64{5}})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/blog/create-blog", gotPath)
	assert.Equal(t, float64(1), gotBody["seo_id"])
	assert.Equal(t, []any{float64(5)}, gotBody["blog_tags"])
	assert.NotContains(t, gotBody, "slug")

	resp, err = cl.UpdateBlog(context.Background(), dto.BlogRequest{Slug: "a"})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "slug taken", resp.Text())
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "a", gotBody["slug"])

	resp, err = cl.CreateProject(context.Background(), dto.ProjectRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.False(t, resp.OK())

	_, err = cl.UpdateProject(context.Background(), dto.ProjectRequest{Slug: "p"})
	assert.ErrorIs(t, err, apierrors.ErrUpstreamBadResponse)
	var te *stack_error.TrackerError
	require.ErrorAs(t, err, &te)
	require.NotNil(t, te.Upstream)
	assert.Equal(t, http.MethodPut, te.Upstream.Method)
	assert.Equal(t, "/project/update-project", te.Upstream.Path)
	assert.Equal(t, http.StatusBadGateway, te.Upstream.Status)
}

func TestWriteNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"status":503,"error":"busy"}`)
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)
	cl := New(u, WithRetries(3), WithRetryWait(time.Millisecond, time.Millisecond))

	resp, err := cl.CreateBlog(context.Background(), dto.BlogRequest{})
	require.NoError(t, err)
	assert.Equal(t, "busy", resp.Text())
	assert.Equal(t, int32(1), hits.Load())

	_, err = cl.GetBlogDetails(context.Background(), "x")
	assert.ErrorIs(t, err, apierrors.ErrUpstream)
	assert.Equal(t, int32(5), hits.Load())
}

func TestCredentialsForwarded(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("access_token")
		if err != nil || cookie.Value != "abc" || r.Header.Get("Authorization") != "Bearer xyz" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"status":200}`)
	}))

	ok, err := cl.CheckSession(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	ctx := WithCredentials(context.Background(), Credentials{
		Cookies:       []*http.Cookie{{Name: "access_token", Value: "abc"}},
		Authorization: "Bearer xyz",
	})
	ok, err = cl.CheckSession(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCredentialsFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "refresh_token", Value: "r"})
	r.Header.Set("Authorization", "Bearer t")

	creds := CredentialsFromRequest(r)
	require.Len(t, creds.Cookies, 1)
	assert.Equal(t, "refresh_token", creds.Cookies[0].Name)
	assert.Equal(t, "Bearer t", creds.Authorization)
	assert.NotEqual(t, Credentials{}.Fingerprint(), creds.Fingerprint())
}
