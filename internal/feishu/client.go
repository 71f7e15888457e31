package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://open.feishu.cn"

	tokenPath    = "/open-apis/auth/v3/tenant_access_token/internal"
	endpointPath = "/open-apis/event/v1/ws/endpoint"
	messagesPath = "/open-apis/im/v1/messages"
)

// Client talks to the Feishu Open Platform REST API: tenant access token,
// websocket endpoint discovery, and message creation. It is safe for
// concurrent use, so the outbound send path and the connection goroutine
// share a single instance.
type Client struct {
	appID      string
	appSecret  string
	baseURL    string
	httpClient *http.Client

	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(appID, appSecret string) *Client {
	return &Client{
		appID:      appID,
		appSecret:  appSecret,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// accessToken returns a cached tenant access token, refreshing it when
// expired. Refreshed tokens are kept 60s short of their reported expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	body := map[string]string{"app_id": c.appID, "app_secret": c.appSecret}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	b, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(b, &result)
	if result.TenantAccessToken == "" {
		return "", fmt.Errorf("feishu: get token failed: code=%d msg=%s", result.Code, result.Msg)
	}
	c.token = result.TenantAccessToken
	c.tokenExp = time.Now().Add(time.Duration(result.Expire-60) * time.Second)
	return c.token, nil
}

// WebSocketURL asks the Open Platform for the event-subscription
// long-connection endpoint.
func (c *Client) WebSocketURL(ctx context.Context) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]any{"app_id": c.appID}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpointPath, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	b, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(b, &result); err != nil {
		return "", err
	}
	if result.Code != 0 {
		return "", fmt.Errorf("feishu: get ws url code=%d msg=%s", result.Code, result.Msg)
	}
	return result.Data.URL, nil
}

// SendText creates a text message in the given chat. receiverID may be a
// chat ID or a user open ID ("ou_" prefix).
func (c *Client) SendText(ctx context.Context, receiverID, text string) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	idType := "chat_id"
	if strings.HasPrefix(receiverID, "ou_") {
		idType = "open_id"
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	body := map[string]any{
		"receive_id": receiverID,
		"msg_type":   "text",
		"content":    string(content),
	}
	data, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+messagesPath+"?receive_id_type="+idType, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	b, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(b, &result)
	if result.Code != 0 {
		return fmt.Errorf("feishu: create message code=%d msg=%s", result.Code, result.Msg)
	}
	return nil
}
