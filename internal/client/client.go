// Package client is a typed HTTP client for the library REST API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ariefcatur/booknest/internal/library"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

type Client struct {
	base   string
	apiKey string
	hc     *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		hc:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) ListBooks(ctx context.Context) ([]library.Book, error) {
	var out []library.Book
	return out, c.do(ctx, http.MethodGet, "/book", nil, &out)
}

func (c *Client) GetBook(ctx context.Context, id string) (library.Book, error) {
	var out library.Book
	return out, c.do(ctx, http.MethodGet, "/book/"+url.PathEscape(id), nil, &out)
}

func (c *Client) CreateBook(ctx context.Context, in library.BookInput) (library.Book, error) {
	var out library.Book
	return out, c.do(ctx, http.MethodPost, "/book", in, &out)
}

func (c *Client) UpdateBook(ctx context.Context, id string, in library.BookInput) (library.Book, error) {
	var out library.Book
	return out, c.do(ctx, http.MethodPut, "/book/"+url.PathEscape(id), in, &out)
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/book/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]library.Category, error) {
	var out []library.Category
	return out, c.do(ctx, http.MethodGet, "/category", nil, &out)
}

func (c *Client) CreateCategory(ctx context.Context, in library.CategoryInput) (library.Category, error) {
	var out library.Category
	return out, c.do(ctx, http.MethodPost, "/category", in, &out)
}

func (c *Client) ListCollections(ctx context.Context) ([]library.Collection, error) {
	var out []library.Collection
	return out, c.do(ctx, http.MethodGet, "/collection", nil, &out)
}

func (c *Client) CreateCollection(ctx context.Context, in library.CollectionInput) (library.Collection, error) {
	var out library.Collection
	return out, c.do(ctx, http.MethodPost, "/collection", in, &out)
}

func (c *Client) ListMembers(ctx context.Context) ([]library.Member, error) {
	var out []library.Member
	return out, c.do(ctx, http.MethodGet, "/member", nil, &out)
}

func (c *Client) GetMember(ctx context.Context, id string) (library.Member, error) {
	var out library.Member
	return out, c.do(ctx, http.MethodGet, "/member/"+url.PathEscape(id), nil, &out)
}

func (c *Client) CreateMember(ctx context.Context, in library.MemberInput) (library.Member, error) {
	var out library.Member
	return out, c.do(ctx, http.MethodPost, "/member", in, &out)
}

func (c *Client) DeleteMember(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/member/"+url.PathEscape(id), nil, nil)
}

func (c *Client) SetMembership(ctx context.Context, memberID string, status library.MembershipStatus) (library.Membership, error) {
	var out library.Membership
	in := library.MembershipInput{Status: string(status)}
	return out, c.do(ctx, http.MethodPut, "/member/"+url.PathEscape(memberID)+"/membership", in, &out)
}

// CreateIssuance sends idemKey as the Idempotency-Key header when non-empty.
func (c *Client) CreateIssuance(ctx context.Context, in library.IssuanceInput, idemKey string) (library.Issuance, error) {
	var out library.Issuance
	var h http.Header
	if idemKey != "" {
		h = http.Header{"Idempotency-Key": []string{idemKey}}
	}
	return out, c.doWith(ctx, http.MethodPost, "/issuance", in, &out, h)
}

func (c *Client) ReturnIssuance(ctx context.Context, id string) (library.Issuance, error) {
	var out library.Issuance
	return out, c.do(ctx, http.MethodPost, "/issuance/"+url.PathEscape(id)+"/return", nil, &out)
}

func (c *Client) ListIssuances(ctx context.Context, q library.IssuanceQuery) ([]library.Issuance, error) {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.BookID != "" {
		v.Set("book_id", q.BookID)
	}
	if q.MemberID != "" {
		v.Set("member_id", q.MemberID)
	}
	path := "/issuance"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []library.Issuance
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) Stats(ctx context.Context) (library.Stats, error) {
	var out library.Stats
	return out, c.do(ctx, http.MethodGet, "/query/stats", nil, &out)
}

func (c *Client) Outstanding(ctx context.Context) ([]library.Issuance, error) {
	var out []library.Issuance
	return out, c.do(ctx, http.MethodGet, "/query/outstanding", nil, &out)
}

func (c *Client) Overdue(ctx context.Context) ([]library.Issuance, error) {
	var out []library.Issuance
	return out, c.do(ctx, http.MethodGet, "/query/overdue", nil, &out)
}

func (c *Client) NeverBorrowed(ctx context.Context) ([]library.Book, error) {
	var out []library.Book
	return out, c.do(ctx, http.MethodGet, "/query/never-borrowed", nil, &out)
}

func (c *Client) MostBorrowed(ctx context.Context, limit int) ([]library.BorrowCount, error) {
	path := "/query/most-borrowed"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []library.BorrowCount
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doWith(ctx, method, path, in, out, nil)
}

func (c *Client) doWith(ctx context.Context, method, path string, in, out any, h http.Header) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	for k, vs := range h {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode}
		b, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		if json.Unmarshal(b, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return apiErr
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
