// internal/sender/telegram.go
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/promopilot/promopilot-backend/internal/errors"
)

// TelegramSender posts through the Bot API sendMessage method.
type TelegramSender struct {
	Token      string
	HTTPClient *http.Client
}

func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TelegramSender) Send(ctx context.Context, target, content string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"chat_id": target,
		"text":    content,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return "", appErrors.NewTransientDelivery(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		// Network failures and context timeouts: retryable by an explicit re-queue.
		return "", appErrors.NewTransientDelivery(err.Error())
	}
	defer resp.Body.Close()

	var body struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
		Result      struct {
			MessageID int64 `json:"message_id"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", appErrors.NewTransientDelivery(err.Error())
	}

	if !body.OK {
		switch resp.StatusCode {
		case http.StatusForbidden, http.StatusBadRequest, http.StatusNotFound:
			// Bot kicked, chat deleted, not enough rights: admin action needed.
			return "", appErrors.NewChannelUnreachable(0, body.Description)
		default:
			// 429 and 5xx land here.
			return "", appErrors.NewTransientDelivery(body.Description)
		}
	}

	return strconv.FormatInt(body.Result.MessageID, 10), nil
}

var _ Sender = (*TelegramSender)(nil)
