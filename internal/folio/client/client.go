// Пакет client - HTTP-клиент REST API контента: детали постов и проектов для редактора, создание, обновление и проверка сессии.
//
// Основные возможности:
//   - Повтор запросов при сетевых ошибках и ответах 5xx (go-retryablehttp).
//   - Дедупликация одновременных чтений одного черновика (singleflight): один запрос в полёте на ключ.
//   - Проброс cookie и Authorization пользователя через context.
//   - Нормализация ответов записи {status, message|error}.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/aisa-it/folio/internal/folio/dto"
	stack_error "github.com/aisa-it/folio/internal/folio/stack-error"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"
)

const (
	ResourceBlog    = "blog"
	ResourceProject = "project"

	maxResponseSize = 10 << 20
)

type Client struct {
	baseURL *url.URL
	http    *retryablehttp.Client

	reads singleflight.Group
}

type Option func(*retryablehttp.Client)

// WithRetries задаёт число повторов после первой попытки.
func WithRetries(n int) Option {
	return func(cl *retryablehttp.Client) {
		cl.RetryMax = n
	}
}

func WithRetryWait(min, max time.Duration) Option {
	return func(cl *retryablehttp.Client) {
		cl.RetryWaitMin = min
		cl.RetryWaitMax = max
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *retryablehttp.Client) {
		cl.HTTPClient.Timeout = d
	}
}

func New(baseURL *url.URL, opts ...Option) *Client {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 3
	cl.RetryWaitMin = time.Millisecond * 200
	cl.RetryWaitMax = time.Second * 2
	cl.HTTPClient.Timeout = time.Second * 15
	cl.Logger = slog.Default()
	// Последний ответ нужен для разбора {status, error}, поэтому без ошибки "giving up"
	cl.ErrorHandler = retryablehttp.PassthroughErrorHandler
	cl.CheckRetry = retryPolicy

	for _, opt := range opts {
		opt(cl)
	}

	u := *baseURL
	u.Path = strings.TrimSuffix(u.Path, "/")
	return &Client{baseURL: &u, http: cl}
}

// GetBlogDetails читает пост в представлении редактора. Отсутствующий пост - apierrors.ErrDraftNotFound.
func (c *Client) GetBlogDetails(ctx context.Context, slug string) (*dto.BlogDetails, error) {
	var details dto.BlogDetails
	if err := c.getDetails(ctx, ResourceBlog, slug, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) GetProjectDetails(ctx context.Context, slug string) (*dto.ProjectDetails, error) {
	var details dto.ProjectDetails
	if err := c.getDetails(ctx, ResourceProject, slug, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) CreateBlog(ctx context.Context, req dto.BlogRequest) (*dto.Response, error) {
	return c.write(ctx, http.MethodPost, "/blog/create-blog", req)
}

func (c *Client) UpdateBlog(ctx context.Context, req dto.BlogRequest) (*dto.Response, error) {
	return c.write(ctx, http.MethodPut, "/blog/update-blog", req)
}

func (c *Client) CreateProject(ctx context.Context, req dto.ProjectRequest) (*dto.Response, error) {
	return c.write(ctx, http.MethodPost, "/project/create-project", req)
}

func (c *Client) UpdateProject(ctx context.Context, req dto.ProjectRequest) (*dto.Response, error) {
	return c.write(ctx, http.MethodPut, "/project/update-project", req)
}

// CheckSession спрашивает у API, действительна ли сессия из переданных в context учётных данных.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("/auth/check-session"), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, stack_error.TrackErrorStack(fmt.Errorf("%w: check session: %w", apierrors.ErrUpstream, err)).
			WithUpstream(http.MethodGet, req.URL.Path, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return true, nil
	}
	var r dto.Response
	if err := json.Unmarshal(body, &r); err != nil {
		return true, nil
	}
	return r.Status == 0 || r.OK(), nil
}

func (c *Client) getDetails(ctx context.Context, resource, slug string, dst any) error {
	if slug == "" {
		return fmt.Errorf("%w: empty slug", apierrors.ErrDraftNotFound)
	}

	u := c.endpoint(resource, "get-"+resource+"-details", slug)
	q := u.Query()
	q.Set("is_editor", "true")
	u.RawQuery = q.Encode()

	creds := CredentialsFromContext(ctx)
	key := resource + "/" + slug + "?is_editor=true#" + creds.Fingerprint()

	// Запрос выполняется без отмены от первого вызвавшего: к нему могут присоединиться другие
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.reads.DoChan(key, func() (any, error) {
		return c.fetch(fetchCtx, u)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	// Результат общий для присоединившихся вызовов: трасса создаётся на каждый вызов отдельно
	f, _ := res.Val.(fetched)
	if res.Err != nil {
		return stack_error.TrackErrorStack(res.Err).
			WithUpstream(http.MethodGet, u.Path, f.status).
			AddContext("resource", resource).
			AddContext("slug", slug)
	}

	if err := json.Unmarshal(unwrapData(f.body), dst); err != nil {
		return stack_error.TrackErrorStack(fmt.Errorf("%w: decode %s details: %w", apierrors.ErrUpstreamBadResponse, resource, err)).
			WithUpstream(http.MethodGet, u.Path, f.status)
	}
	return nil
}

// fetched - ответ чтения. status передаётся и вместе с ошибкой, если ответ был получен.
type fetched struct {
	body   []byte
	status int
}

func (c *Client) fetch(ctx context.Context, u *url.URL) (fetched, error) {
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fetched{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fetched{}, fmt.Errorf("%w: %w", apierrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	res := fetched{status: resp.StatusCode}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return res, apierrors.ErrDraftNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return res, fmt.Errorf("%w: status %d", apierrors.ErrUpstream, resp.StatusCode)
	}

	res.body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return res, fmt.Errorf("%w: read body: %w", apierrors.ErrUpstream, err)
	}
	return res, nil
}

// write отправляет тело записи и разбирает {status, message|error} при любом статусе HTTP.
func (c *Client) write(ctx context.Context, method, path string, payload any) (*dto.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	// Запись выполняется одной попыткой
	req, err := c.newRequest(context.WithValue(ctx, noRetryKey{}, true), method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, stack_error.TrackErrorStack(fmt.Errorf("%w: %s %s: %w", apierrors.ErrUpstream, method, path, err)).
			WithUpstream(method, path, 0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, stack_error.TrackErrorStack(fmt.Errorf("%w: read body: %w", apierrors.ErrUpstream, err)).
			WithUpstream(method, path, resp.StatusCode)
	}

	var r dto.Response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, stack_error.TrackErrorStack(
			fmt.Errorf("%w: status %d: %w", apierrors.ErrUpstreamBadResponse, resp.StatusCode, err),
		).WithUpstream(method, path, resp.StatusCode)
	}
	if r.Status == 0 {
		r.Status = resp.StatusCode
	}
	return &r, nil
}

func (c *Client) endpoint(elem ...string) *url.URL {
	return c.baseURL.JoinPath(elem...)
}

func (c *Client) newRequest(ctx context.Context, method string, u *url.URL, body []byte) (*retryablehttp.Request, error) {
	var rawBody any
	if body != nil {
		rawBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), rawBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	CredentialsFromContext(ctx).apply(req.Request)
	return req, nil
}

type noRetryKey struct{}

func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if noRetry, _ := ctx.Value(noRetryKey{}).(bool); noRetry {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// unwrapData снимает обёртку {"data": {...}}, если API вернул детали внутри неё.
func unwrapData(body []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if d := bytes.TrimSpace(env.Data); len(d) > 0 && d[0] == '{' {
		return d
	}
	return body
}

// IsNotFound - true, если черновик не найден на стороне API.
func IsNotFound(err error) bool {
	return errors.Is(err, apierrors.ErrDraftNotFound)
}
