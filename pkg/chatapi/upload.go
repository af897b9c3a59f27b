package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxUploadSize mirrors the backend's 5 MiB limit so oversized files are
// rejected before the bytes leave the machine.
const MaxUploadSize = 5 * 1024 * 1024

var allowedUploadExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// UploadFile sends one file as multipart form data to /file/upload-file/.
// The upload path is independent of the text-send path: its failure is
// reported as UploadError and must not block an accompanying message.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader, size int64) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExts[ext] {
		return nil, &ValidationError{Detail: "invalid file format, only .pdf, .doc, .docx and .txt are allowed"}
	}
	if size > MaxUploadSize {
		return nil, &ValidationError{Detail: fmt.Sprintf("file too large, max size is %dMB", MaxUploadSize/(1024*1024))}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file/upload-file/", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UploadError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UploadError{Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if mapped := errorFromStatus(resp.StatusCode, respBody); mapped != nil {
			var authErr *AuthError
			if errors.As(mapped, &authErr) {
				// Expired tokens force logout from any endpoint.
				return nil, mapped
			}
		}
		return nil, &UploadError{Detail: errorDetail(respBody)}
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &UploadError{Detail: strings.TrimSpace(string(respBody))}
	}
	return &result, nil
}
