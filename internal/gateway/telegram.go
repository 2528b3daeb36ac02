package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// ErrAPIError indicates the Bot API returned ok=false.
var ErrAPIError = errors.New("telegram api error")

const (
	defaultEndpoint    = "https://api.telegram.org"
	defaultPollTimeout = 30 // seconds, long-poll hold time
)

// Telegram is a Bot API client using long polling for updates.
type Telegram struct {
	token       string
	endpoint    string
	http        *http.Client
	logger      *slog.Logger
	pollTimeout int
}

// Option configures a Telegram client.
type Option func(*Telegram)

// WithEndpoint overrides the Bot API base URL. Used in tests.
func WithEndpoint(endpoint string) Option {
	return func(t *Telegram) { t.endpoint = endpoint }
}

// WithPollTimeout overrides the long-poll hold time in seconds.
func WithPollTimeout(seconds int) Option {
	return func(t *Telegram) { t.pollTimeout = seconds }
}

// NewTelegram creates a Bot API client.
func NewTelegram(token string, logger *slog.Logger, opts ...Option) *Telegram {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Telegram{
		token:       token,
		endpoint:    defaultEndpoint,
		logger:      logger,
		pollTimeout: defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	// The HTTP timeout must exceed the long-poll hold time.
	t.http = &http.Client{Timeout: time.Duration(t.pollTimeout+10) * time.Second}
	return t
}

// Bot API wire types, limited to the fields the bot consumes.

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type apiUpdate struct {
	UpdateID int64       `json:"update_id"`
	Message  *apiMessage `json:"message"`
}

type apiMessage struct {
	From  *apiUser       `json:"from"`
	Chat  apiChat        `json:"chat"`
	Text  string         `json:"text"`
	Photo []apiPhotoSize `json:"photo"`
}

type apiUser struct {
	ID int64 `json:"id"`
}

type apiChat struct {
	ID int64 `json:"id"`
}

type apiPhotoSize struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size"`
}

type apiFile struct {
	FilePath string `json:"file_path"`
}

type replyKeyboard struct {
	Keyboard       [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

// Send delivers one message. A message with Photo set goes out as a photo
// with the text as its caption.
func (t *Telegram) Send(ctx context.Context, msg Message) error {
	if len(msg.Photo) > 0 {
		return t.sendPhoto(ctx, msg)
	}
	return t.sendText(ctx, msg)
}

func (t *Telegram) sendText(ctx context.Context, msg Message) error {
	payload := map[string]any{
		"chat_id": msg.ChatID,
		"text":    msg.Text,
	}
	if kb := buildKeyboard(msg.Keyboard); kb != nil {
		payload["reply_markup"] = kb
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	_, err = t.call(ctx, "sendMessage", "application/json", bytes.NewReader(body))
	return err
}

func (t *Telegram) sendPhoto(ctx context.Context, msg Message) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("chat_id", strconv.FormatInt(msg.ChatID, 10)); err != nil {
		return fmt.Errorf("writing chat_id field: %w", err)
	}
	if msg.Text != "" {
		if err := mw.WriteField("caption", msg.Text); err != nil {
			return fmt.Errorf("writing caption field: %w", err)
		}
	}
	if kb := buildKeyboard(msg.Keyboard); kb != nil {
		markup, err := json.Marshal(kb)
		if err != nil {
			return fmt.Errorf("marshaling keyboard: %w", err)
		}
		if err := mw.WriteField("reply_markup", string(markup)); err != nil {
			return fmt.Errorf("writing reply_markup field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("photo", "card.png")
	if err != nil {
		return fmt.Errorf("creating photo part: %w", err)
	}
	if _, err := part.Write(msg.Photo); err != nil {
		return fmt.Errorf("writing photo part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	_, err = t.call(ctx, "sendPhoto", mw.FormDataContentType(), &body)
	return err
}

// Updates starts long polling and returns the update stream. The channel
// closes when the context is cancelled. Poll failures are logged and
// retried with a short backoff; updates are never dropped on the floor.
func (t *Telegram) Updates(ctx context.Context) <-chan Update {
	ch := make(chan Update)
	go func() {
		defer close(ch)
		var offset int64
		for {
			updates, err := t.getUpdates(ctx, offset)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				t.logger.Error("polling updates failed", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(3 * time.Second):
				}
				continue
			}
			for _, u := range updates {
				offset = u.UpdateID + 1
				upd, ok := t.convert(ctx, u)
				if !ok {
					continue
				}
				select {
				case ch <- upd:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}

func (t *Telegram) getUpdates(ctx context.Context, offset int64) ([]apiUpdate, error) {
	payload, err := json.Marshal(map[string]any{
		"offset":          offset,
		"timeout":         t.pollTimeout,
		"allowed_updates": []string{"message"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling poll request: %w", err)
	}

	result, err := t.call(ctx, "getUpdates", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var updates []apiUpdate
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decoding updates: %w", err)
	}
	return updates, nil
}

// convert normalizes one raw update. Updates without a message or sender
// are skipped; photo messages have their largest variant downloaded.
func (t *Telegram) convert(ctx context.Context, u apiUpdate) (Update, bool) {
	if u.Message == nil || u.Message.From == nil {
		return Update{}, false
	}
	upd := Update{
		ID:     u.UpdateID,
		UserID: u.Message.From.ID,
		ChatID: u.Message.Chat.ID,
		Text:   u.Message.Text,
	}
	if len(u.Message.Photo) > 0 {
		largest := u.Message.Photo[0]
		for _, p := range u.Message.Photo[1:] {
			if p.FileSize > largest.FileSize {
				largest = p
			}
		}
		data, err := t.downloadFile(ctx, largest.FileID)
		if err != nil {
			t.logger.Error("downloading photo failed", "file_id", largest.FileID, "error", err)
		} else {
			upd.Photo = data
		}
	}
	return upd, true
}

func (t *Telegram) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{"file_id": fileID})
	if err != nil {
		return nil, fmt.Errorf("marshaling getFile request: %w", err)
	}
	result, err := t.call(ctx, "getFile", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var file apiFile
	if err := json.Unmarshal(result, &file); err != nil {
		return nil, fmt.Errorf("decoding file info: %w", err)
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", t.endpoint, t.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (t *Telegram) call(ctx context.Context, method, contentType string, body io.Reader) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/bot%s/%s", t.endpoint, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(respBody, &api); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("%w: %s: %s", ErrAPIError, method, api.Description)
	}
	return api.Result, nil
}

func buildKeyboard(rows [][]string) *replyKeyboard {
	if len(rows) == 0 {
		return nil
	}
	kb := &replyKeyboard{ResizeKeyboard: true}
	for _, row := range rows {
		var buttons []keyboardButton
		for _, label := range row {
			buttons = append(buttons, keyboardButton{Text: label})
		}
		kb.Keyboard = append(kb.Keyboard, buttons)
	}
	return kb
}
