package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"papermill/internal/config"
)

const apiEnvVar = "PAPERMILL_API"

type conversionView struct {
	ID                int64   `json:"id"`
	OriginalFilename  string  `json:"original_filename"`
	ConvertedFilename string  `json:"converted_filename"`
	ConversionType    string  `json:"conversion_type"`
	Status            string  `json:"status"`
	CreatedAt         *string `json:"created_at"`
	CompletedAt       *string `json:"completed_at"`
	ErrorMessage      *string `json:"error_message"`
}

type uploadResponse struct {
	Message      string `json:"message"`
	ConversionID int64  `json:"conversion_id"`
	Status       string `json:"status"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Processing int    `json:"processing"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
}

type apiError struct {
	Error string `json:"error"`
}

type apiClient struct {
	base string
	http *http.Client
}

// resolveBaseURL picks the daemon address: --api flag, then PAPERMILL_API,
// then the configured bind address.
func resolveBaseURL(apiFlag, configFlag *string) (string, error) {
	if apiFlag != nil && strings.TrimSpace(*apiFlag) != "" {
		return normalizeBaseURL(*apiFlag), nil
	}
	if env := strings.TrimSpace(os.Getenv(apiEnvVar)); env != "" {
		return normalizeBaseURL(env), nil
	}
	path := ""
	if configFlag != nil {
		path = *configFlag
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return normalizeBaseURL(cfg.Paths.APIBind), nil
}

func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "/")
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "http://" + raw
}

func newAPIClient(apiFlag, configFlag *string) (*apiClient, error) {
	base, err := resolveBaseURL(apiFlag, configFlag)
	if err != nil {
		return nil, err
	}
	return &apiClient{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *apiClient) upload(path, conversionType string) (*uploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := writer.WriteField("conversion_type", conversionType); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.base+"/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result uploadResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) status(id int64) (*conversionView, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/status/%d", c.base, id), nil)
	if err != nil {
		return nil, err
	}
	var result conversionView
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) list() ([]conversionView, error) {
	req, err := http.NewRequest(http.MethodGet, c.base+"/conversions", nil)
	if err != nil {
		return nil, err
	}
	var result []conversionView
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *apiClient) download(id int64, dest string) (string, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/download/%d", c.base, id))
	if err != nil {
		return "", fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	name := attachmentFilename(resp.Header.Get("Content-Disposition"))
	if dest == "" {
		dest = name
	}
	if dest == "" {
		dest = fmt.Sprintf("conversion-%d", id)
	}
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return dest, nil
}

func (c *apiClient) health() (*healthResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.base+"/healthz", nil)
	if err != nil {
		return nil, err
	}
	var result healthResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload apiError
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s (HTTP %d)", payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("daemon returned HTTP %d", resp.StatusCode)
}

func attachmentFilename(disposition string) string {
	const marker = `filename="`
	idx := strings.Index(disposition, marker)
	if idx < 0 {
		return ""
	}
	rest := disposition[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
