package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openlocalize/polyloc/keep"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderDeepL          = "deepl"
	ProviderLibreTranslate = "libretranslate"
)

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Config holds the connection settings for an MT provider.
type Config struct {
	// Name is the provider identifier (deepl, libretranslate).
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (optional for self-hosted services).
	APIKey string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
	// SourceLang is the source language code ("" = provider auto-detect).
	SourceLang string
	// PreserveFormatting asks the provider not to normalize punctuation
	// and casing around sentence boundaries.
	PreserveFormatting bool
}

// DefaultConfigs returns the pre-configured provider definitions.
func DefaultConfigs() map[string]Config {
	return map[string]Config{
		ProviderDeepL: {
			Name:               ProviderDeepL,
			BaseURL:            "https://api-free.deepl.com",
			Timeout:            60 * time.Second,
			PreserveFormatting: true,
		},
		ProviderLibreTranslate: {
			Name:    ProviderLibreTranslate,
			BaseURL: "http://localhost:5000",
			Timeout: 60 * time.Second,
		},
	}
}

// NewProvider constructs a Provider from its configuration.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider %s: base URL is required", cfg.Name)
	}
	client := makeHTTPClient(cfg.Proxy, cfg.Timeout)

	switch cfg.Name {
	case ProviderDeepL:
		return &DeepL{cfg: cfg, client: client}, nil
	case ProviderLibreTranslate:
		return &LibreTranslate{cfg: cfg, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: deepl, libretranslate)", cfg.Name)
	}
}

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both an explicit proxy and HTTP_PROXY/HTTPS_PROXY env vars.
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// postJSON issues one POST and classifies the response: 429 becomes a
// *RateLimitError carrying the Retry-After hint, any other non-200 status
// is fatal, and a 200 body is returned for provider-specific decoding.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    truncate(string(respBody), 200),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	return respBody, nil
}

// parseRetryAfter parses a Retry-After header holding delay seconds.
// HTTP-date values and garbage yield 0 (no hint).
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ---------------------------------------------------------------------------
// DeepL
// ---------------------------------------------------------------------------

// DeepL calls the DeepL v2 translate API. Keep markers survive translation
// via XML tag handling with the marker tag on the ignore list.
type DeepL struct {
	cfg    Config
	client *http.Client
}

func (d *DeepL) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	req := struct {
		Text               []string `json:"text"`
		TargetLang         string   `json:"target_lang"`
		SourceLang         string   `json:"source_lang,omitempty"`
		PreserveFormatting bool     `json:"preserve_formatting"`
		TagHandling        string   `json:"tag_handling"`
		IgnoreTags         []string `json:"ignore_tags"`
	}{
		Text:               texts,
		TargetLang:         strings.ToUpper(targetLang),
		PreserveFormatting: d.cfg.PreserveFormatting,
		TagHandling:        "xml",
		IgnoreTags:         []string{keep.TagName},
	}
	if d.cfg.SourceLang != "" {
		req.SourceLang = strings.ToUpper(d.cfg.SourceLang)
	}

	headers := map[string]string{
		"Authorization": "DeepL-Auth-Key " + d.cfg.APIKey,
	}
	endpoint := strings.TrimRight(d.cfg.BaseURL, "/") + "/v2/translate"

	respBody, err := postJSON(ctx, d.client, endpoint, headers, req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parsing DeepL response: %w", err)
	}
	if len(resp.Translations) != len(texts) {
		return nil, fmt.Errorf("DeepL returned %d translations for %d texts", len(resp.Translations), len(texts))
	}

	out := make([]string, len(resp.Translations))
	for i, t := range resp.Translations {
		out[i] = t.Text
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// LibreTranslate
// ---------------------------------------------------------------------------

// LibreTranslate calls a LibreTranslate-compatible endpoint. HTML format
// keeps the <keep> markers as markup the engine passes through.
type LibreTranslate struct {
	cfg    Config
	client *http.Client
}

func (l *LibreTranslate) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	source := l.cfg.SourceLang
	if source == "" {
		source = "auto"
	}

	req := struct {
		Q      []string `json:"q"`
		Source string   `json:"source"`
		Target string   `json:"target"`
		Format string   `json:"format"`
		APIKey string   `json:"api_key,omitempty"`
	}{
		Q:      texts,
		Source: source,
		Target: targetLang,
		Format: "html",
		APIKey: l.cfg.APIKey,
	}

	endpoint := strings.TrimRight(l.cfg.BaseURL, "/") + "/translate"

	respBody, err := postJSON(ctx, l.client, endpoint, nil, req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		TranslatedText []string `json:"translatedText"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parsing LibreTranslate response: %w", err)
	}
	if len(resp.TranslatedText) != len(texts) {
		return nil, fmt.Errorf("LibreTranslate returned %d translations for %d texts", len(resp.TranslatedText), len(texts))
	}

	return resp.TranslatedText, nil
}
