// Package client is a Go client for the social network API.
//
// The credential is always explicit: pass it with WithToken, or derive a
// per-user client with (*Client).As. Nothing is read from ambient state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Client calls the API on behalf of one credential (or anonymously).
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the API rooted at baseURL (e.g. "http://localhost:8080/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// As returns a copy of c that authenticates with token.
func (c *Client) As(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the credential c sends.
func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: "error"}
		var e struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			if e.Status != "" {
				apiErr.Status = e.Status
			}
			apiErr.Message = e.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

// Register creates an account.
func (c *Client) Register(ctx context.Context, r Registration) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/user/registro", r, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, *User, error) {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/user/login", in, &out); err != nil {
		return "", nil, err
	}
	return out.Token, &out.User, nil
}

// Profile loads userID's profile as seen by the caller.
func (c *Client) Profile(ctx context.Context, userID uint) (*Profile, error) {
	var out profileBody
	if err := c.do(ctx, http.MethodGet, "/user/profile/"+id(userID), nil, &out); err != nil {
		return nil, err
	}
	return &Profile{
		User:         out.User,
		FollowInfo:   out.FollowInfo,
		Counters:     out.Counters,
		Publications: out.Publications.toPage(),
	}, nil
}

// Counters loads userID's totals.
func (c *Client) Counters(ctx context.Context, userID uint) (*Counters, error) {
	var out Counters
	if err := c.do(ctx, http.MethodGet, "/user/counters/"+id(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users loads one page of the user listing.
func (c *Client) Users(ctx context.Context, page int) (*Page[ListedUser], error) {
	var out userListBody
	if err := c.do(ctx, http.MethodGet, "/user/list/"+strconv.Itoa(page), nil, &out); err != nil {
		return nil, err
	}
	return &Page[ListedUser]{Items: out.Users, Total: out.Total, Pages: out.Pages, Page: out.Page}, nil
}

// Follow makes the caller follow userID.
func (c *Client) Follow(ctx context.Context, userID uint) (*Follow, error) {
	var out struct {
		FollowStored Follow `json:"followStored"`
	}
	if err := c.do(ctx, http.MethodPost, "/follow/save", map[string]uint{"followed": userID}, &out); err != nil {
		return nil, err
	}
	return &out.FollowStored, nil
}

// Unfollow removes the caller's follow of userID.
func (c *Client) Unfollow(ctx context.Context, userID uint) error {
	return c.do(ctx, http.MethodDelete, "/follow/unfollow/"+id(userID), nil, nil)
}

// Following loads one page of the users userID follows, plus the caller's follow sets.
func (c *Client) Following(ctx context.Context, userID uint, page int) (*Page[Follow], FollowSets, error) {
	return c.follows(ctx, "/follow/following/", userID, page)
}

// Followers loads one page of the users following userID, plus the caller's follow sets.
func (c *Client) Followers(ctx context.Context, userID uint, page int) (*Page[Follow], FollowSets, error) {
	return c.follows(ctx, "/follow/followers/", userID, page)
}

func (c *Client) follows(ctx context.Context, prefix string, userID uint, page int) (*Page[Follow], FollowSets, error) {
	var out followListBody
	if err := c.do(ctx, http.MethodGet, prefix+id(userID)+"/"+strconv.Itoa(page), nil, &out); err != nil {
		return nil, FollowSets{}, err
	}
	return &Page[Follow]{Items: out.Result, Total: out.Total, Pages: out.Pages, Page: out.Page}, out.UserFollowInfo, nil
}

// Publish stores a publication for the caller.
func (c *Client) Publish(ctx context.Context, text string) (*Publication, error) {
	var out struct {
		PublicationStored Publication `json:"publicationStored"`
	}
	if err := c.do(ctx, http.MethodPost, "/publication/save", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out.PublicationStored, nil
}

// UserPublications loads one page of userID's publications.
func (c *Client) UserPublications(ctx context.Context, userID uint, page int) (*Page[Publication], error) {
	var out publicationPage
	if err := c.do(ctx, http.MethodGet, "/publication/user/"+id(userID)+"/"+strconv.Itoa(page), nil, &out); err != nil {
		return nil, err
	}
	p := out.toPage()
	return &p, nil
}

// Feed loads one page of the caller's feed.
func (c *Client) Feed(ctx context.Context, page int) (*Page[Publication], error) {
	var out publicationPage
	if err := c.do(ctx, http.MethodGet, "/publication/feed/"+strconv.Itoa(page), nil, &out); err != nil {
		return nil, err
	}
	p := out.toPage()
	return &p, nil
}
