package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const expoPushURL = "https://exp.host/--/api/v2/push/send"

// IsExpoToken reports whether the token was issued by Expo rather than FCM directly.
func IsExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

type expoMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title,omitempty"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Badge    *int              `json:"badge,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

type expoResponse struct {
	Data   []expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

type expoTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

// ExpoProvider sends through the Expo push API.
type ExpoProvider struct {
	httpClient *http.Client
	url        string
	logger     zerolog.Logger
}

// NewExpoProvider creates a provider for the public Expo endpoint. Expo needs no credentials.
func NewExpoProvider(logger zerolog.Logger) *ExpoProvider {
	return NewExpoProviderWithURL(expoPushURL, &http.Client{Timeout: 10 * time.Second}, logger)
}

func NewExpoProviderWithURL(url string, client *http.Client, logger zerolog.Logger) *ExpoProvider {
	return &ExpoProvider{
		httpClient: client,
		url:        url,
		logger:     logger.With().Str("component", "expo").Logger(),
	}
}

func (p *ExpoProvider) Send(ctx context.Context, msg Message) error {
	badge := 1
	payload, err := json.Marshal([]expoMessage{{
		To:       msg.Token,
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     msg.Data,
		Sound:    "default",
		Badge:    &badge,
		Priority: "high",
	}})
	if err != nil {
		return &DeliveryError{Kind: KindUnknown, Provider: "expo", Err: fmt.Errorf("marshal message: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return &DeliveryError{Kind: KindUnknown, Provider: "expo", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Kind: KindTransient, Provider: "expo", Code: "network", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &DeliveryError{Kind: KindTransient, Provider: "expo", Code: "network", Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &DeliveryError{Kind: KindTransient, Provider: "expo", Code: fmt.Sprintf("http_%d", resp.StatusCode),
			Err: fmt.Errorf("expo api error: %s", truncate(body, 200))}
	}
	if resp.StatusCode != http.StatusOK {
		return &DeliveryError{Kind: KindUnknown, Provider: "expo", Code: fmt.Sprintf("http_%d", resp.StatusCode),
			Err: fmt.Errorf("expo api error: %s", truncate(body, 200))}
	}

	var out expoResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return &DeliveryError{Kind: KindUnknown, Provider: "expo", Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(out.Data) == 0 {
		return &DeliveryError{Kind: KindUnknown, Provider: "expo", Err: fmt.Errorf("empty ticket list")}
	}

	ticket := out.Data[0]
	if ticket.Status == "ok" {
		p.logger.Debug().Str("ticket_id", ticket.ID).Msg("expo ticket ok")
		return nil
	}
	return classifyExpoTicket(ticket)
}

func classifyExpoTicket(t expoTicket) *DeliveryError {
	de := &DeliveryError{Provider: "expo", Code: t.Details.Error, Err: fmt.Errorf("%s", t.Message)}
	switch t.Details.Error {
	case "DeviceNotRegistered":
		de.Kind = KindPermanentInvalidToken
	case "MessageRateExceeded":
		de.Kind = KindTransient
	default:
		de.Kind = KindUnknown
	}
	return de
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
