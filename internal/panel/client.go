package panel

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client — HTTP-клиент API панели.
//
// Логинится лениво при первом запросе и один раз перелогинивается
// на 401 (токен панели истекает). Потокобезопасен.
type Client struct {
	baseURL  string
	username string
	password string

	http *http.Client

	mu    sync.Mutex
	token string
}

// Config — конфигурация клиента панели.
type Config struct {
	BaseURL  string
	Username string
	Password string

	// Timeout — таймаут одного запроса (default: 30s).
	Timeout time.Duration

	// InsecureSkipVerify — не проверять TLS-сертификат панели.
	InsecureSkipVerify bool
}

// NewClient создаёт клиент панели.
func NewClient(cfg Config) (*Client, error) {
	base, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}

	return &Client{
		baseURL:  base,
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// NormalizeBaseURL приводит base_url к каноническому виду:
// добавляет https:// при отсутствии схемы, срезает хвосты
// /docs, /redoc, /openapi.json и завершающий /api.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidBaseURL
	}
	if parsed.Host == "" {
		return "", ErrInvalidBaseURL
	}

	path := strings.TrimRight(parsed.Path, "/")
	lowered := strings.ToLower(path)
	for _, suffix := range []string{"/docs", "/redoc", "/openapi.json"} {
		if strings.HasSuffix(lowered, suffix) {
			path = strings.TrimRight(path[:len(path)-len(suffix)], "/")
			lowered = strings.ToLower(path)
			break
		}
	}
	if strings.HasSuffix(lowered, "/api") {
		path = strings.TrimRight(path[:len(path)-len("/api")], "/")
	}

	normalized := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: path}
	return strings.TrimRight(normalized.String(), "/"), nil
}

// login получает токен администратора и запоминает его.
func (c *Client) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/admin/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("login: HTTP %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: login succeeded but access_token is missing", ErrUnexpectedResponse)
	}

	c.mu.Lock()
	c.token = tok.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// request выполняет запрос с Bearer-токеном.
// На 401 один раз перелогинивается и повторяет запрос.
func (c *Client) request(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	if c.currentToken() == "" {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
	}

	do := func() (*http.Response, error) {
		u := c.baseURL + "/" + strings.TrimLeft(path, "/")
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, method, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.currentToken())
		return c.http.Do(req)
	}

	resp, err := do()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.login(ctx); err != nil {
			return nil, err
		}
		resp, err = do()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}
	return resp, nil
}

// decodeUser разбирает ответ с аккаунтом, мапя 404 на ErrUserNotFound.
func decodeUser(resp *http.Response, username string) (*User, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// GetUser возвращает аккаунт по имени.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	resp, err := c.request(ctx, http.MethodGet, "api/user/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(resp, username)
}

// RevokeSubscription отзывает подписку аккаунта: панель заменяет
// секрет подписки, попутно меняя изменчивые части ссылок.
// Возвращает аккаунт уже с новыми ссылками.
func (c *Client) RevokeSubscription(ctx context.Context, username string) (*User, error) {
	resp, err := c.request(ctx, http.MethodPost,
		"api/user/"+url.PathEscape(username)+"/revoke_sub", nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(resp, username)
}

// ResetUsage обнуляет счётчик трафика аккаунта.
func (c *Client) ResetUsage(ctx context.Context, username string) (*User, error) {
	resp, err := c.request(ctx, http.MethodPost,
		"api/user/"+url.PathEscape(username)+"/reset", nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(resp, username)
}

// GetUserUsage возвращает сводку трафика аккаунта по узлам.
func (c *Client) GetUserUsage(ctx context.Context, username string) (*Usage, error) {
	query := url.Values{}
	query.Set("start", "")
	query.Set("end", "")

	resp, err := c.request(ctx, http.MethodGet,
		"api/user/"+url.PathEscape(username)+"/usage", query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var usage Usage
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, fmt.Errorf("decode usage: %w", err)
	}
	return &usage, nil
}

// GetInbounds возвращает карту протокол → имена инбаундов.
func (c *Client) GetInbounds(ctx context.Context) (map[string][]string, error) {
	resp, err := c.request(ctx, http.MethodGet, "api/inbounds", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var inbounds map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&inbounds); err != nil {
		return nil, fmt.Errorf("%w: decode inbounds: %v", ErrUnexpectedResponse, err)
	}
	return inbounds, nil
}

// FetchSubscription скачивает полезную нагрузку подписки по URL.
// Относительный URL разрешается от базового URL панели.
func (c *Client) FetchSubscription(ctx context.Context, subURL string) (string, error) {
	subURL = strings.TrimSpace(subURL)
	if subURL == "" {
		return "", nil
	}
	if !strings.Contains(subURL, "://") {
		subURL = c.baseURL + "/" + strings.TrimLeft(subURL, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, subURL, nil)
	if err != nil {
		return "", fmt.Errorf("create subscription request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch subscription: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read subscription body: %w", err)
	}
	return string(body), nil
}
