package push

import (
	"context"

	"github.com/rs/zerolog"
)

// LogProvider accepts every message and only logs it.
// It stands in for FCM in development when no Firebase credentials are set.
type LogProvider struct {
	logger zerolog.Logger
}

func NewLogProvider(logger zerolog.Logger) *LogProvider {
	return &LogProvider{logger: logger.With().Str("component", "push_log").Logger()}
}

func (p *LogProvider) Send(_ context.Context, msg Message) error {
	evt := p.logger.Info().
		Str("token", maskToken(msg.Token)).
		Str("title", msg.Title).
		Str("body", msg.Body)
	for k, v := range msg.Data {
		evt = evt.Str("data_"+k, v)
	}
	evt.Msg("push message (not sent)")
	return nil
}

func maskToken(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:10] + "..."
}
