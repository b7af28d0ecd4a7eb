// Package eventclient is a thin HTTP client for the events API, used by the
// terminal console and by integration tests.
package eventclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"events-app/internal/models"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ListOptions struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

type Pagination struct {
	TotalPages   int `json:"totalPages"`
	TotalRecords int `json:"totalRecords"`
}

type Page struct {
	Data       []models.Event `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// Draft carries the four text fields of a create or update.
type Draft struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
}

func (c *Client) List(ctx context.Context, opts ListOptions) (*Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(opts.Page))
	query.Set("limit", strconv.Itoa(opts.Limit))
	query.Set("search", opts.Search)
	query.Set("sortBy", opts.SortBy)
	query.Set("sortOrder", opts.SortOrder)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/events?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := c.do(req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/events/%d", c.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := c.do(req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create posts a new event. imagePath may be empty; otherwise the named file
// is attached as the image part.
func (c *Client) Create(ctx context.Context, draft Draft, imagePath string) (*models.Event, error) {
	return c.save(ctx, http.MethodPost, c.BaseURL+"/api/events", draft, imagePath)
}

func (c *Client) Update(ctx context.Context, id int64, draft Draft, imagePath string) (*models.Event, error) {
	return c.save(ctx, http.MethodPut, fmt.Sprintf("%s/api/events/%d", c.BaseURL, id), draft, imagePath)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/events/%d", c.BaseURL, id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) save(ctx context.Context, method, endpoint string, draft Draft, imagePath string) (*models.Event, error) {
	body, contentType, err := multipartBody(draft, imagePath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var event models.Event
	if err := c.do(req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func multipartBody(draft Draft, imagePath string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	fields := map[string]string{
		"name":        draft.Name,
		"description": draft.Description,
		"startDate":   draft.StartDate,
		"endDate":     draft.EndDate,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if imagePath != "" {
		file, err := os.Open(imagePath)
		if err != nil {
			return nil, "", err
		}
		defer file.Close()

		part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Message)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
