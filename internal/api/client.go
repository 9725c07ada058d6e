package api

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
)

// Client is a thin HTTP client for the transcript service. It handles
// optional Bearer token authentication and JSON (de)serialization. It
// never retries: a failed call is reported to the caller as is.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new service client. The baseURL is the root URL of
// the service (e.g., http://localhost:8000). An empty token sends no
// Authorization header. A zero timeout leaves the transport default.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload sends a transcript file as multipart form field "file".
func (c *Client) Upload(
	ctx context.Context,
	filename string,
	content io.Reader,
) (*UploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var resp UploadResponse
	err = c.send(ctx, http.MethodPost, "/api/upload", w.FormDataContentType(), &buf, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetKeyInsights fetches the categorized insights for a transcript.
func (c *Client) GetKeyInsights(
	ctx context.Context,
	fileID string,
) (*InsightsResponse, error) {
	var resp InsightsResponse
	if err := c.Get(ctx, "/api/get-key-insights/"+url.PathEscape(fileID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateKeyInsights asks the service to regenerate insights using the
// given suggestions and returns the regenerated set.
func (c *Client) UpdateKeyInsights(
	ctx context.Context,
	fileID string,
	suggestedChanges string,
) (*InsightsResponse, error) {
	var resp InsightsResponse
	err := c.Post(ctx,
		"/api/update-key-insights/"+url.PathEscape(fileID),
		SuggestedChanges{SuggestedChanges: suggestedChanges},
		&resp,
	)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMailDraft fetches the follow-up email draft for a transcript.
func (c *Client) GetMailDraft(
	ctx context.Context,
	fileID string,
) (*MailDraftResponse, error) {
	var resp MailDraftResponse
	if err := c.Get(ctx, "/api/get-mail-draft/"+url.PathEscape(fileID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateMailDraft regenerates the email draft using feedback.
func (c *Client) UpdateMailDraft(
	ctx context.Context,
	fileID string,
	suggestedChanges string,
) (*MailDraftResponse, error) {
	var resp MailDraftResponse
	err := c.Post(ctx,
		"/api/update-mail-draft/"+url.PathEscape(fileID),
		SuggestedChanges{SuggestedChanges: suggestedChanges},
		&resp,
	)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendEmail asks the service to deliver an email. A response with
// success=false is reported as an error.
func (c *Client) SendEmail(ctx context.Context, req SendEmailRequest) error {
	var resp SendEmailResponse
	if err := c.Post(ctx, "/api/send-email", req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		return fmt.Errorf("sending email: service reported failure: %s", msg)
	}
	return nil
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.send(ctx, http.MethodGet, path, "", nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}
	return c.send(ctx, http.MethodPost, path, "application/json", bytes.NewReader(data), result)
}

// send builds the request, handles auth and status checks, and decodes
// the JSON response into result.
func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	contentType string,
	body io.Reader,
	result interface{},
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{BaseURL: c.baseURL}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(respBody))
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail != "" {
			detail = errResp.Detail
		}
		return &Error{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Detail:     detail,
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}
