// Package client talks to the platter HTTP API on behalf of the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juju/errors"

	"github.com/dukerupert/platter/internal/model"
)

// Client is a thin wrapper over the REST endpoints. Methods that need a
// logged-in restaurant send the token set with WithToken or SetToken.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// Session is what login returns and what the CLI keeps between runs.
type Session struct {
	Restaurant model.Restaurant `json:"data"`
	Token      string           `json:"token"`
	ExpiresAt  time.Time        `json:"expiresAt"`
}

// Expired reports whether the token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Signup struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Location       string `json:"location"`
	City           string `json:"city"`
	ContactNo      string `json:"contactNo"`
	RestaurantName string `json:"restaurantName"`
}

// FoodInput is a new food item. Price is decimal text such as "10.50".
type FoodInput struct {
	Name        string `json:"foodName"`
	Price       string `json:"price"`
	ImagePath   string `json:"imagePath"`
	Description string `json:"description"`
}

// FoodPatch updates only the non-nil fields.
type FoodPatch struct {
	Name        *string `json:"foodName,omitempty"`
	Price       *string `json:"price,omitempty"`
	ImagePath   *string `json:"imagePath,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (c *Client) Search(ctx context.Context, city, name string) ([]model.Restaurant, error) {
	q := url.Values{}
	if city != "" {
		q.Set("location", city)
	}
	if name != "" {
		q.Set("restaurantName", name)
	}
	path := "/coutromer"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp struct {
		Data []model.Restaurant `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, errors.Annotate(err, "search")
	}
	return resp.Data, nil
}

func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var cities []string
	if err := c.do(ctx, http.MethodGet, "/coutromer/Location", nil, &cities); err != nil {
		return nil, errors.Annotate(err, "list cities")
	}
	return cities, nil
}

func (c *Client) Menu(ctx context.Context, restaurantID string) (*model.RestaurantWithMenu, error) {
	var resp struct {
		Restaurant model.Restaurant `json:"restaurant"`
		Foods      []model.FoodItem `json:"foods"`
	}
	if err := c.do(ctx, http.MethodGet, "/coutromer/"+url.PathEscape(restaurantID), nil, &resp); err != nil {
		return nil, errors.Annotate(err, "menu")
	}
	return &model.RestaurantWithMenu{Restaurant: resp.Restaurant, Foods: resp.Foods}, nil
}

func (c *Client) Register(ctx context.Context, in Signup) (*model.Restaurant, error) {
	var resp struct {
		Data model.Restaurant `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/restaurant", in, &resp); err != nil {
		return nil, errors.Annotate(err, "register")
	}
	return &resp.Data, nil
}

// Login authenticates and, on success, uses the new token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/restaurant/login", body, &sess); err != nil {
		return nil, errors.Annotate(err, "login")
	}
	c.token = sess.Token
	return &sess, nil
}

func (c *Client) ListFoods(ctx context.Context, restaurantID string) ([]model.FoodItem, error) {
	var items []model.FoodItem
	if err := c.do(ctx, http.MethodGet, "/Foods/"+url.PathEscape(restaurantID), nil, &items); err != nil {
		return nil, errors.Annotate(err, "list foods")
	}
	return items, nil
}

// GetFoodItem returns the live item, or nil if it no longer exists.
func (c *Client) GetFoodItem(ctx context.Context, itemID string) (*model.FoodItem, error) {
	var resp struct {
		Data model.FoodItem `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/Foods/edit/"+url.PathEscape(itemID), nil, &resp)
	if errors.Is(err, errors.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Annotate(err, "get food item")
	}
	return &resp.Data, nil
}

func (c *Client) CreateFood(ctx context.Context, in FoodInput) (*model.FoodItem, error) {
	var resp struct {
		Data model.FoodItem `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/Foods", in, &resp); err != nil {
		return nil, errors.Annotate(err, "create food item")
	}
	return &resp.Data, nil
}

func (c *Client) UpdateFood(ctx context.Context, itemID string, p FoodPatch) (*model.FoodItem, error) {
	var resp struct {
		Data model.FoodItem `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/Foods/edit/"+url.PathEscape(itemID), p, &resp); err != nil {
		return nil, errors.Annotate(err, "update food item")
	}
	return &resp.Data, nil
}

func (c *Client) DeleteFood(ctx context.Context, itemID string) (*model.FoodItem, error) {
	var item model.FoodItem
	if err := c.do(ctx, http.MethodDelete, "/Foods/"+url.PathEscape(itemID), nil, &item); err != nil {
		return nil, errors.Annotate(err, "delete food item")
	}
	return &item, nil
}

// UploadImage sends an image and returns the URL to use as imagePath.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", errors.Annotate(err, "build upload")
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", errors.Annotate(err, "read image")
	}
	if err := mw.Close(); err != nil {
		return "", errors.Annotate(err, "build upload")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/Foods/images", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &resp); err != nil {
		return "", errors.Annotate(err, "upload image")
	}
	return resp.URL, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Annotate(err, "create request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Annotate(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Annotate(err, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Annotate(err, "decode response")
	}
	return nil
}

// statusError turns an error response into an error of the matching kind.
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return errors.BadRequestf("%s", msg)
	case http.StatusUnauthorized:
		return errors.Unauthorizedf("%s", msg)
	case http.StatusForbidden:
		return errors.Forbiddenf("%s", msg)
	case http.StatusNotFound:
		return errors.NotFoundf("%s", msg)
	case http.StatusTooManyRequests:
		return errors.NewQuotaLimitExceeded(nil, msg)
	case http.StatusServiceUnavailable:
		return errors.NotSupportedf("%s", msg)
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
}
