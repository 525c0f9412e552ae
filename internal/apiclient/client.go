// Package apiclient talks to the rating platform's REST API. It implements
// dashboard.Client and maps HTTP failures back onto the domain error kinds:
// unreachable hosts and 5xx answers become domain.ErrTransport.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Clark-Hu/store-ratings/internal/dashboard"
	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
)

var _ dashboard.Client = (*Client)(nil)

// Client is an HTTP-backed platform client. It carries the bearer token of the
// logged-in identity once Login or Register succeeds.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	logger  *log.Logger

	mu    sync.RWMutex
	token string
}

// New constructs a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse api url: %q is not absolute", baseURL)
	}
	return &Client{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Token returns the bearer token in use, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token, for resuming a saved session.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, in domain.NewUser) (domain.Identity, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Identity{}, err
	}
	var resp authPayload
	_, err := c.do(ctx, http.MethodPost, "/api/register", nil, userRequest{
		Name:     in.Name,
		Email:    in.Email,
		Address:  in.Address,
		Password: in.Password,
		Role:     string(in.Role),
	}, &resp)
	if err != nil {
		return domain.Identity{}, err
	}
	return c.adopt(resp)
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	if err := creds.Validate(); err != nil {
		return domain.Identity{}, err
	}
	var resp authPayload
	if _, err := c.do(ctx, http.MethodPost, "/api/login", nil, loginRequest{Email: creds.Email, Password: creds.Password}, &resp); err != nil {
		return domain.Identity{}, err
	}
	return c.adopt(resp)
}

// Logout revokes the current token server-side and forgets it locally. The
// local token is dropped even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) adopt(resp authPayload) (domain.Identity, error) {
	role, err := domain.ParseRole(resp.User.Role)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("login: server sent unknown role %q: %w", resp.User.Role, err)
	}
	if resp.Token == "" {
		return domain.Identity{}, fmt.Errorf("login: empty token: %w", domain.ErrTransport)
	}
	c.SetToken(resp.Token)
	return domain.Identity{
		UserID: resp.User.ID,
		Name:   resp.User.Name,
		Email:  resp.User.Email,
		Role:   role,
		Token:  resp.Token,
	}, nil
}

// ListUsers implements dashboard.Client.
func (c *Client) ListUsers(ctx context.Context, p query.Params) ([]domain.User, error) {
	var payload []userPayload
	if _, err := c.do(ctx, http.MethodGet, "/api/users", listQuery(p, ""), nil, &payload); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(payload))
	for _, u := range payload {
		users = append(users, u.toDomain())
	}
	return users, nil
}

// ListStores implements dashboard.Client.
func (c *Client) ListStores(ctx context.Context, p query.Params, requestingUserID string) ([]domain.StoreView, error) {
	var payload []storePayload
	if _, err := c.do(ctx, http.MethodGet, "/api/stores", listQuery(p, requestingUserID), nil, &payload); err != nil {
		return nil, err
	}
	stores := make([]domain.StoreView, 0, len(payload))
	for _, s := range payload {
		stores = append(stores, s.toDomain())
	}
	return stores, nil
}

// ListRatingsForStore implements dashboard.Client.
func (c *Client) ListRatingsForStore(ctx context.Context, storeID string) ([]domain.RatingView, error) {
	return c.ratingViews(ctx, "/api/stores/"+url.PathEscape(storeID)+"/ratings")
}

// ListRatingsForOwner implements dashboard.Client.
func (c *Client) ListRatingsForOwner(ctx context.Context, ownerID string) ([]domain.RatingView, error) {
	return c.ratingViews(ctx, "/api/store-owner/"+url.PathEscape(ownerID)+"/ratings")
}

func (c *Client) ratingViews(ctx context.Context, path string) ([]domain.RatingView, error) {
	var payload []ratingViewPayload
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	views := make([]domain.RatingView, 0, len(payload))
	for _, v := range payload {
		views = append(views, v.toDomain())
	}
	return views, nil
}

// UpsertRating implements dashboard.Client. The boolean reports whether the
// server created a new rating rather than replacing one.
func (c *Client) UpsertRating(ctx context.Context, in domain.RatingInput) (domain.Rating, bool, error) {
	if err := in.Validate(); err != nil {
		return domain.Rating{}, false, err
	}
	var payload ratingPayload
	status, err := c.do(ctx, http.MethodPost, "/api/ratings", nil, ratingRequest{
		UserID:  in.UserID,
		StoreID: in.StoreID,
		Rating:  in.Value,
		Comment: in.Comment,
	}, &payload)
	if err != nil {
		return domain.Rating{}, false, err
	}
	return payload.toDomain(), status == http.StatusCreated, nil
}

// CreateUser implements dashboard.Client.
func (c *Client) CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error) {
	var payload userPayload
	_, err := c.do(ctx, http.MethodPost, "/api/admin/users", nil, userRequest{
		Name:     in.Name,
		Email:    in.Email,
		Address:  in.Address,
		Password: in.Password,
		Role:     string(in.Role),
	}, &payload)
	if err != nil {
		return domain.User{}, err
	}
	return payload.toDomain(), nil
}

// CreateStore implements dashboard.Client.
func (c *Client) CreateStore(ctx context.Context, in domain.NewStore) (domain.Store, error) {
	var payload storePayload
	_, err := c.do(ctx, http.MethodPost, "/api/stores", nil, storeRequest{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		OwnerID: in.OwnerID,
	}, &payload)
	if err != nil {
		return domain.Store{}, err
	}
	return payload.toDomain().Store, nil
}

// UpdateStore implements dashboard.Client.
func (c *Client) UpdateStore(ctx context.Context, storeID string, in domain.StoreUpdate) (domain.Store, error) {
	var payload storePayload
	_, err := c.do(ctx, http.MethodPut, "/api/stores/"+url.PathEscape(storeID), nil, storeUpdateRequest{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
	}, &payload)
	if err != nil {
		return domain.Store{}, err
	}
	return payload.toDomain().Store, nil
}

// UpdatePassword implements dashboard.Client.
func (c *Client) UpdatePassword(ctx context.Context, in domain.PasswordChange) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/update-password", nil, passwordRequest{
		UserID:          in.UserID,
		CurrentPassword: in.Current,
		NewPassword:     in.New,
		ConfirmPassword: in.Confirm,
	}, nil)
	return err
}

// Stats implements dashboard.Client.
func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	var payload statsPayload
	if _, err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &payload); err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{
		TotalUsers:   payload.TotalUsers,
		TotalStores:  payload.TotalStores,
		TotalRatings: payload.TotalRatings,
	}, nil
}

func listQuery(p query.Params, userID string) url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.SortField != "" {
		q.Set("sortBy", p.SortField)
	}
	if p.Order != "" {
		q.Set("order", string(p.Order))
	}
	if userID != "" {
		q.Set("userId", userID)
	}
	return q
}

// do issues one request and decodes a 2xx body into dst. It returns the
// status code so callers can tell 201 from 200.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, dst interface{}) (int, error) {
	rel := &url.URL{Path: c.baseURL.Path + path}
	if len(q) > 0 {
		rel.RawQuery = q.Encode()
	}
	endpoint := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("%s %s: %w", method, path, errors.Join(domain.ErrTransport, ctxErr))
		}
		return 0, fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if dst == nil || resp.StatusCode == http.StatusNoContent {
			return resp.StatusCode, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w: %v", path, domain.ErrTransport, err)
		}
		return resp.StatusCode, nil
	}
	return resp.StatusCode, c.statusError(method, path, resp)
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	var payload errorPayload
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		verr := &domain.ValidationError{}
		for field, msg := range payload.Details {
			verr.Add(field, msg)
		}
		if len(verr.Fields) == 0 {
			verr.Add("request", payload.message(resp.StatusCode))
		}
		return fmt.Errorf("%s %s: %w", method, path, verr)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %s: %w", method, path, payload.message(resp.StatusCode), domain.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrConflict)
	default:
		c.logger.Printf("apiclient: unexpected status %d for %s %s", resp.StatusCode, method, path)
		return fmt.Errorf("%s %s: upstream returned %d: %w", method, path, resp.StatusCode, domain.ErrTransport)
	}
}
