package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"buidl-explorer-go/pkg/models"
	"buidl-explorer-go/pkg/utils"
)

// Service talks to the scrape backend: the results endpoint, the export
// artifact and the progress stream.
type Service struct {
	baseURL string
	// client is used for one-shot requests and carries the request timeout.
	client *http.Client
	// streamClient has no overall timeout; streams live as long as the job.
	streamClient *http.Client
}

// Option customizes a Service
type Option func(*Service)

// WithHTTPClient replaces the client used for one-shot requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithRequestTimeout sets the timeout of one-shot requests.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

func NewService(baseURL string, opts ...Option) (*Service, error) {
	normalized, err := utils.NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	s := &Service{
		baseURL:      normalized,
		client:       &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the normalized backend address
func (s *Service) BaseURL() string {
	return s.baseURL
}

func (s *Service) buildRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

// CheckHealth verifies the backend is reachable
func (s *Service) CheckHealth(ctx context.Context) error {
	req, err := s.buildRequest(ctx, http.MethodGet, PathHealth)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("service not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// FetchResults retrieves the whole finalized result set in one request.
// It never retries. Any failure comes back as a *Error of type fetch or decode.
func (s *Service) FetchResults(ctx context.Context) ([]models.ProjectRecord, error) {
	req, err := s.buildRequest(ctx, http.MethodGet, PathProjects)
	if err != nil {
		return nil, newFetchError("failed to create request", 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, newFetchError("request failed", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newFetchError("failed to read response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newFetchError(apiErrorMessage(resp, body), resp.StatusCode, nil)
	}

	var records []models.ProjectRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, newDecodeError(err)
	}
	if records == nil {
		records = []models.ProjectRecord{}
	}
	return records, nil
}

// Download streams the export artifact into w and returns the file name the
// backend suggested.
func (s *Service) Download(ctx context.Context, w io.Writer) (string, error) {
	req, err := s.buildRequest(ctx, http.MethodGet, PathDownload)
	if err != nil {
		return "", newDownloadError("failed to create request", 0, err)
	}

	resp, err := s.streamClient.Do(req)
	if err != nil {
		return "", newDownloadError("request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", newDownloadError(apiErrorMessage(resp, body), resp.StatusCode, nil)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", newDownloadError("failed to read artifact", resp.StatusCode, err)
	}
	return attachmentName(resp.Header.Get("Content-Disposition")), nil
}

// apiErrorMessage prefers the backend's {"error": "..."} body over the raw text.
func apiErrorMessage(resp *http.Response, body []byte) string {
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
		return errorResp.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return msg
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return DefaultExportName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultExportName
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultExportName
	}
	return name
}
