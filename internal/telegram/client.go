package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scanrate_backend/platform/config"
	"scanrate_backend/platform/logger"
)

// Client talks to the Telegram Bot API over HTTPS.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

// NewClient builds a Bot API client from configuration.
func NewClient(cfg config.TelegramConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.GetTelegramAPIBaseURL(), "/"),
		token:   cfg.GetTelegramToken(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

type sendMessageRequest struct {
	ChatID      int64       `json:"chat_id"`
	Text        string      `json:"text"`
	ReplyMarkup ReplyMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type fileResult struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// SendMessage posts a text message to a chat. markup may be nil for a
// plain message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup ReplyMarkup) error {
	payload := sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return nil
}

// FilePath resolves a file ID to a Bot API file path via getFile.
func (c *Client) FilePath(ctx context.Context, fileID string) (string, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", c.baseURL, c.token, url.QueryEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	result, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("getFile: %w", err)
	}

	var file fileResult
	if err := json.Unmarshal(result, &file); err != nil {
		return "", fmt.Errorf("decode getFile result: %w", err)
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("getFile returned no file path")
	}
	return file.FilePath, nil
}

// DownloadFile fetches the raw bytes of a file previously resolved with
// FilePath.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !api.OK {
		return nil, fmt.Errorf("bot api error: %s", strings.TrimSpace(api.Description))
	}
	return api.Result, nil
}
