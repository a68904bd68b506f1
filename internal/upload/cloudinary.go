// Package upload pushes product images to Cloudinary through its signed
// upload API. The hosted URL goes into a product's image_url field.
package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/syberke/TechStore/configs"
)

// ErrNotConfigured is returned when the Cloudinary credentials are absent.
// Product images then have to be hosted elsewhere and submitted as plain
// URLs on product creation.
var ErrNotConfigured = errors.New("cloudinary credentials not configured")

// UploadError is a non-success response from Cloudinary, kept for
// diagnostics.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cloudinary returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("cloudinary returned status %d: %s", e.StatusCode, e.Message)
}

// Result carries the hosted image location.
type Result struct {
	URL      string
	PublicID string
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type uploadErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	cfg    config.CloudinaryConfig
	client *http.Client
	now    func() time.Time
}

// NewClient builds a signed-upload client from injected configuration. The
// HTTP client carries an explicit timeout; image payloads are large enough
// that an unbounded hang would pin the handler goroutine.
func NewClient(cfg config.CloudinaryConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
}

// Upload sends the raw image bytes as a signed upload and returns the hosted
// location. The file travels as a base64 data URI form field, the format the
// upload endpoint expects for non-remote sources.
func (c *Client) Upload(ctx context.Context, contentType string, data []byte) (*Result, error) {
	if c.cfg.CloudName == "" || c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}

	timestamp := c.now().Unix()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"file":      fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
		"api_key":   c.cfg.APIKey,
		"timestamp": strconv.FormatInt(timestamp, 10),
		"signature": c.sign(timestamp),
		"folder":    c.cfg.Folder,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("encode upload form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("encode upload form: %w", err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", c.cfg.BaseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		logrus.WithError(err).Error("cloudinary request failed")
		return nil, fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		upErr := &UploadError{StatusCode: resp.StatusCode}
		var errBody uploadErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			upErr.Message = errBody.Error.Message
		}
		logrus.WithField("status", resp.StatusCode).Error("cloudinary rejected upload")
		return nil, upErr
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, &UploadError{StatusCode: resp.StatusCode, Message: "undecodable response body"}
	}
	if uploaded.SecureURL == "" {
		return nil, &UploadError{StatusCode: resp.StatusCode, Message: "response has no secure_url"}
	}

	return &Result{URL: uploaded.SecureURL, PublicID: uploaded.PublicID}, nil
}

// sign computes the SHA-1 upload signature: the signed parameters (folder
// and timestamp, in alphabetical order) with the API secret appended.
func (c *Client) sign(timestamp int64) string {
	payload := fmt.Sprintf("folder=%s&timestamp=%d%s", c.cfg.Folder, timestamp, c.cfg.APISecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}
