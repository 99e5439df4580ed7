package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBase         = "https://api.cloudinary.com/v1_1"
	cloudinaryHTTPTimeout  = 30 * time.Second
	maxErrorSnippetBytes   = 512
	cloudinaryResourceKind = "image"
)

// CloudinaryConfig selects the credential mode and target cloud. Exactly
// one mode must be usable: an unsigned upload preset, or an API key/secret
// pair. Signed mode additionally unlocks existence probing through the
// admin API.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string

	// APIBase overrides the Cloudinary endpoint, for tests.
	APIBase    string
	HTTPClient *http.Client
}

// Cloudinary is a Backend over the Cloudinary upload and admin APIs.
type Cloudinary struct {
	cfg     CloudinaryConfig
	apiBase string
	client  *http.Client
}

// NewCloudinary validates cfg and returns a backend for it.
func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	if strings.TrimSpace(cfg.CloudName) == "" {
		return nil, fmt.Errorf("cloudinary: cloud name is required")
	}
	if cfg.UploadPreset == "" && (cfg.APIKey == "" || cfg.APISecret == "") {
		return nil, fmt.Errorf("cloudinary: either an upload preset or an api key/secret pair is required")
	}
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cloudinaryHTTPTimeout}
	}
	return &Cloudinary{cfg: cfg, apiBase: strings.TrimSuffix(apiBase, "/"), client: client}, nil
}

// signed reports whether admin-API credentials are configured. Unsigned
// preset mode cannot query the admin API, so Probe degrades to a miss.
func (c *Cloudinary) signed() bool {
	return c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

// Probe checks whether key is already stored and returns its delivery URL.
// A 404 from the admin API is a miss, not an error.
func (c *Cloudinary) Probe(ctx context.Context, key string) (string, bool, error) {
	if !c.signed() {
		return "", false, nil
	}

	endpoint := fmt.Sprintf("%s/%s/resources/%s/upload/%s", c.apiBase, c.cfg.CloudName, cloudinaryResourceKind, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("%w: probe %s: %v", ErrTransport, key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", false, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", false, fmt.Errorf("%w: probe returned status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return "", false, fmt.Errorf("%w: probe %s returned status %d: %s", ErrTransport, key, resp.StatusCode, errorSnippet(resp.Body))
	}

	var payload struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", false, fmt.Errorf("%w: decode probe response: %v", ErrTransport, err)
	}
	if payload.SecureURL == "" {
		return "", false, nil
	}
	return payload.SecureURL, true, nil
}

// Store uploads data under key and returns the permanent delivery URL.
// Re-uploading identical bytes under the same key overwrites in place on
// the Cloudinary side, which keeps the call idempotent.
func (c *Cloudinary) Store(ctx context.Context, key string, data []byte) (string, error) {
	params := map[string]string{"public_id": key}
	if c.signed() {
		params["timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)
		params["signature"] = signParams(params, c.cfg.APISecret)
		params["api_key"] = c.cfg.APIKey
	} else {
		params["upload_preset"] = c.cfg.UploadPreset
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range params {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("%w: build upload form: %v", ErrTransport, err)
		}
	}
	part, err := writer.CreateFormFile("file", basename(key))
	if err != nil {
		return "", fmt.Errorf("%w: build upload form: %v", ErrTransport, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: build upload form: %v", ErrTransport, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: build upload form: %v", ErrTransport, err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", c.apiBase, c.cfg.CloudName, cloudinaryResourceKind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrTransport, key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: upload returned status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("%w: upload %s returned status %d: %s", ErrTransport, key, resp.StatusCode, errorSnippet(resp.Body))
	}

	var payload struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %v", ErrTransport, err)
	}
	if payload.SecureURL != "" {
		return payload.SecureURL, nil
	}
	if payload.URL != "" {
		return payload.URL, nil
	}
	return "", fmt.Errorf("%w: upload response missing url", ErrTransport)
}

// signParams produces the Cloudinary request signature: the SHA-1 hex of
// the alphabetically-sorted params joined with "&", followed by the
// API secret.
func signParams(params map[string]string, secret string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// basename returns the final "/"-delimited segment of a storage key.
func basename(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

func errorSnippet(r io.Reader) string {
	snippet, _ := io.ReadAll(io.LimitReader(r, maxErrorSnippetBytes))
	return strings.TrimSpace(string(snippet))
}
