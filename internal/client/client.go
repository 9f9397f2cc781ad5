// Package client talks to the lounge API over HTTP.
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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"aerogate/internal/access"
	"aerogate/internal/accesslog"
	"aerogate/internal/models"
	"aerogate/internal/utils"
)

// DefaultServer is used when neither a flag nor AEROGATE_SERVER names one.
const DefaultServer = "http://127.0.0.1:8000"

// ServerEnv overrides DefaultServer.
const ServerEnv = "AEROGATE_SERVER"

// ResolveServer picks the base URL: flag, then AEROGATE_SERVER, then DefaultServer.
func ResolveServer(flag string) string {
	if flag != "" {
		return strings.TrimRight(flag, "/")
	}
	if env := os.Getenv(ServerEnv); env != "" {
		return strings.TrimRight(env, "/")
	}
	return DefaultServer
}

// Client calls one lounge server.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for base. A nil hc uses a client with no timeout of its
// own; callers bound each request through its context.
func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{base: strings.TrimRight(base, "/"), http: hc}
}

// Base returns the server URL.
func (c *Client) Base() string { return c.base }

// Capture is a face image to upload.
type Capture struct {
	Filename string
	Data     []byte
}

// ReadCapture loads a capture from disk.
func ReadCapture(path string) (Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Capture{}, fmt.Errorf("read capture: %w", err)
	}
	return Capture{Filename: filepath.Base(path), Data: data}, nil
}

// RegisterForm is the member details sent with a registration.
type RegisterForm struct {
	Name     string
	Email    string
	Passport string
	Expiry   string
}

// Verify uploads a capture to /api/verify.
func (c *Client) Verify(ctx context.Context, capture Capture) (access.VerifyResult, error) {
	var res access.VerifyResult
	err := c.postMultipart(ctx, "/api/verify", nil, capture, &res)
	return res, err
}

// Register uploads a capture and member details to /api/register.
func (c *Client) Register(ctx context.Context, form RegisterForm, capture Capture) (access.RegisterResult, error) {
	fields := map[string]string{
		"name":     form.Name,
		"email":    form.Email,
		"passport": form.Passport,
		"expiry":   form.Expiry,
	}
	var res access.RegisterResult
	err := c.postMultipart(ctx, "/api/register", fields, capture, &res)
	return res, err
}

// Logs lists access-log rows matching f, newest first. A limit of 0 means all.
func (c *Client) Logs(ctx context.Context, f accesslog.Filter, limit int) ([]accesslog.Entry, error) {
	var out []accesslog.Entry
	err := c.get(ctx, "/api/logs", logQuery(f, limit), &out)
	return out, err
}

// Summary counts access-log rows matching f.
func (c *Client) Summary(ctx context.Context, f accesslog.Filter) (accesslog.Summary, error) {
	var out accesslog.Summary
	err := c.get(ctx, "/api/logs/summary", logQuery(f, 0), &out)
	return out, err
}

// ScanStates fetches the scanner screen labels.
func (c *Client) ScanStates(ctx context.Context) ([]models.ScanDisplay, error) {
	var out []models.ScanDisplay
	err := c.get(ctx, "/api/scan/states", nil, &out)
	return out, err
}

func logQuery(f accesslog.Filter, limit int) url.Values {
	q := url.Values{}
	if f.Status != "" && f.Status != accesslog.ShowAll {
		q.Set("status", string(f.Status))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q.Set("q", s)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, capture Capture, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	name := capture.Filename
	if name == "" {
		name = "capture.jpg"
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := fw.Write(capture.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

// do sends req and decodes a JSON body into out. Non-2xx responses become
// *utils.APIError carrying the server's error message.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return utils.New(resp.StatusCode, msg)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode server response: %w", err)
	}
	return nil
}
