package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrUnauthenticated indicates the server rejected the session token.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden indicates the server knows the caller but denied ownership.
	ErrForbidden = errors.New("not allowed")
	// ErrNotFound indicates the target listing does not exist.
	ErrNotFound = errors.New("not found")
)

// User mirrors the server's user payload.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Animal mirrors the server's listing payload.
type Animal struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Species     string  `json:"species"`
	Breed       string  `json:"breed"`
	Age         int     `json:"age"`
	Gender      string  `json:"gender"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Color       string  `json:"color"`
	Vaccinated  bool    `json:"vaccinated"`
	Sterilized  bool    `json:"sterilized"`
	Location    string  `json:"location"`
	PhotoURL    string  `json:"photo_url"`
	Author      struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"author"`
}

// AnimalInput carries listing fields for create and update calls. On update,
// nil fields are left unchanged by the server.
type AnimalInput struct {
	Name        *string  `json:"name,omitempty"`
	Species     *string  `json:"species,omitempty"`
	Breed       *string  `json:"breed,omitempty"`
	Age         *int     `json:"age,omitempty"`
	Gender      *string  `json:"gender,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Vaccinated  *bool    `json:"vaccinated,omitempty"`
	Sterilized  *bool    `json:"sterilized,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

// ListFilter narrows List results by client-visible fields.
type ListFilter struct {
	Species string
	Breed   string
	Gender  string
}

// Client talks to the marketplace API and keeps the session token in sync
// with a TokenStore.
type Client struct {
	http  *resty.Client
	store *TokenStore

	user  *User
	token string
}

func New(baseURL string, store *TokenStore) *Client {
	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15 * time.Second)

	return &Client{http: cli, store: store}
}

// Bootstrap rehydrates the session from the stored token. With no stored token
// the session starts unauthenticated and no network call is made. A token the
// server rejects is cleared silently; any other failure (outage, server fault)
// leaves the token on disk so a later start can retry, and the session starts
// unauthenticated.
func (c *Client) Bootstrap(ctx context.Context) error {
	token, err := c.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	c.token = token
	user, err := c.Me(ctx)
	if err != nil {
		c.token = ""
		c.user = nil
		if errors.Is(err, ErrUnauthenticated) {
			return c.store.Clear()
		}
		return nil
	}
	c.user = user
	return nil
}

// CurrentUser returns the signed-in user, or nil when unauthenticated.
func (c *Client) CurrentUser() *User {
	return c.user
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (*User, error) {
	var result struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	if err := mapAPIError(resp); err != nil {
		return nil, err
	}

	c.token = result.Token
	c.user = &result.User
	if err := c.store.Save(result.Token); err != nil {
		return nil, err
	}
	return c.user, nil
}

// Logout discards the session locally. The server keeps no session state, so
// no request is made; the token simply ages out.
func (c *Client) Logout() error {
	c.token = ""
	c.user = nil
	return c.store.Clear()
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var result struct {
		User User `json:"user"`
	}

	resp, err := c.authorized().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/auth/me")
	if err != nil {
		return nil, fmt.Errorf("me request: %w", err)
	}
	if err := mapAPIError(resp); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *Client) ListAnimals(ctx context.Context, filter ListFilter) ([]Animal, error) {
	params := map[string]string{}
	if filter.Species != "" {
		params["species"] = filter.Species
	}
	if filter.Breed != "" {
		params["breed"] = filter.Breed
	}
	if filter.Gender != "" {
		params["gender"] = filter.Gender
	}

	var animals []Animal
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&animals).
		Get("/api/animals")
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	if err := mapAPIError(resp); err != nil {
		return nil, err
	}
	return animals, nil
}

func (c *Client) GetAnimal(ctx context.Context, id int64) (*Animal, error) {
	var animal Animal
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&animal).
		Get(fmt.Sprintf("/api/animals/%d", id))
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if err := mapAPIError(resp); err != nil {
		return nil, err
	}
	return &animal, nil
}

func (c *Client) CreateAnimal(ctx context.Context, input AnimalInput) (*Animal, error) {
	var animal Animal
	resp, err := c.authorized().
		SetContext(ctx).
		SetBody(input).
		SetResult(&animal).
		Post("/api/animals")
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if err := mapAPIError(resp); err != nil {
		return nil, err
	}
	return &animal, nil
}

func (c *Client) UpdateAnimal(ctx context.Context, id int64, input AnimalInput) (*Animal, error) {
	var animal Animal
	resp, err := c.authorized().
		SetContext(ctx).
		SetBody(input).
		SetResult(&animal).
		Put(fmt.Sprintf("/api/animals/%d", id))
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	if err := mapAPIError(resp); err != nil {
		return nil, err
	}
	return &animal, nil
}

func (c *Client) DeleteAnimal(ctx context.Context, id int64) error {
	resp, err := c.authorized().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/animals/%d", id))
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return mapAPIError(resp)
}

func (c *Client) authorized() *resty.Request {
	req := c.http.R()
	if c.token != "" {
		req.SetHeader("Authorization", "Bearer "+c.token)
	}
	return req
}

func mapAPIError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	message := ""
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		message = body.Error
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		if message == "" {
			message = resp.Status()
		}
		return fmt.Errorf("server error: %s", message)
	}
}
