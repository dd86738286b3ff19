package mediastore

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ResourceType identifies the kind of asset being stored.
type ResourceType string

const (
	ResourceVideo ResourceType = "video"
	ResourceImage ResourceType = "image"
)

// Client handles media storage (Cloudinary-compatible) operations.
type Client struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	cdnURL     string
	httpClient *http.Client
}

// UploadResult contains the stored asset's location and identifier.
type UploadResult struct {
	URL      string `json:"secure_url"`
	PublicID string `json:"public_id"`
	Bytes    int64  `json:"bytes"`
	Format   string `json:"format"`
}

// NewClient creates a new media storage client.
func NewClient(cloudName, apiKey, apiSecret, baseURL, cdnURL string) *Client {
	return &Client{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		cdnURL:    cdnURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// UploadFile uploads a file from the local filesystem and returns its public URL and ID.
func (c *Client) UploadFile(ctx context.Context, localPath, folder string, resourceType ResourceType) (*UploadResult, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{
		"timestamp": timestamp,
	}
	if folder != "" {
		params["folder"] = folder
	}
	params["signature"] = c.sign(params)
	params["api_key"] = c.apiKey

	body := &strings.Builder{}
	writer := multipart.NewWriter(body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file into form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", c.baseURL, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", "BarterSkills-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("media storage error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &result, nil
}

// Delete removes an asset by its public ID.
func (c *Client) Delete(ctx context.Context, publicID string, resourceType ResourceType) error {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("signature", c.sign(params))
	form.Set("api_key", c.apiKey)

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", c.baseURL, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "BarterSkills-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("media storage error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// Download fetches a stored asset to a local path, creating parent directories as needed.
func (c *Client) Download(ctx context.Context, assetURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "BarterSkills-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media download error: status=%d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create destination dir: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write destination file: %w", err)
	}

	return nil
}

// sign produces the request signature: SHA1 over the sorted params joined with
// the API secret, the scheme the upload API expects.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, params[key]))
	}

	hash := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return fmt.Sprintf("%x", hash)
}
