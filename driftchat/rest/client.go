package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// APIError is a non-2xx response from the collaborator.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client provides access to the REST collaborator. The bearer token is
// attached to every request.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a REST client. baseURL is the API root,
// e.g. "http://localhost:3001/api".
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetToken replaces the bearer token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// GetRoom returns metadata for one room.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	var resp Room
	if err := c.get(ctx, "/chats/"+roomID, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMessages returns the ordered message backlog for a room, oldest first.
func (c *Client) GetMessages(ctx context.Context, roomID string) ([]Message, error) {
	var resp []Message
	if err := c.get(ctx, "/messages/"+roomID, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListRooms returns the authenticated user's rooms for the chat list.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var resp []Room
	if err := c.get(ctx, "/chats", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetFriends returns the user's contacts with presence.
func (c *Client) GetFriends(ctx context.Context) ([]User, error) {
	var resp []User
	if err := c.get(ctx, "/users/friends", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateGroup creates a group room.
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Room, error) {
	var resp Room
	if err := c.post(ctx, "/chats/group", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile returns the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var resp User
	if err := c.get(ctx, "/users/profile", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile updates name, avatar and optionally the password.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var resp User
	if err := c.put(ctx, "/users/profile", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload sends a file as multipart form data and returns the stored
// reference. contentType is forwarded as the part's type so the backend
// can classify the upload.
func (c *Client) Upload(ctx context.Context, fileName, contentType string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName)}
	if contentType != "" {
		hdr["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) put(ctx context.Context, path string, body, dest any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, dest)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, dest any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		msg := string(body)
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Message != "" {
				msg = errResp.Message
			} else if errResp.Error != "" {
				msg = errResp.Error
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
