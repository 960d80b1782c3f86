package push

import (
	"context"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// FCMCredentials selects how the Firebase app authenticates.
// CredentialsFile wins when set; otherwise the three inline fields are used.
type FCMCredentials struct {
	CredentialsFile string
	ProjectID       string
	ClientEmail     string
	PrivateKey      string
}

// Configured reports whether any credentials were supplied.
func (c FCMCredentials) Configured() bool {
	return c.CredentialsFile != "" || (c.ProjectID != "" && c.ClientEmail != "" && c.PrivateKey != "")
}

// fcmSender is the slice of *messaging.Client the provider uses.
type fcmSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMProvider sends through Firebase Cloud Messaging, one token per request.
type FCMProvider struct {
	client fcmSender
	logger zerolog.Logger
}

// NewFCMProvider initializes a Firebase app and its messaging client.
// The private key in .env usually carries literal "\n" sequences; they are restored to newlines.
func NewFCMProvider(ctx context.Context, creds FCMCredentials, logger zerolog.Logger) (*FCMProvider, error) {
	var opt option.ClientOption
	var projectID string
	if creds.CredentialsFile != "" {
		data, err := os.ReadFile(creds.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firebase credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(data)
		projectID = creds.ProjectID
	} else {
		privateKey := strings.ReplaceAll(creds.PrivateKey, "\\n", "\n")
		credsJSON := fmt.Sprintf(`{
			"type": "service_account",
			"project_id": %q,
			"private_key": %q,
			"client_email": %q,
			"token_uri": "https://oauth2.googleapis.com/token"
		}`, creds.ProjectID, privateKey, creds.ClientEmail)
		opt = option.WithCredentialsJSON([]byte(credsJSON))
		projectID = creds.ProjectID
	}

	var fbCfg *firebase.Config
	if projectID != "" {
		fbCfg = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	logger.Info().Str("project_id", projectID).Msg("fcm provider initialized")
	return newFCMProvider(client, logger), nil
}

func newFCMProvider(client fcmSender, logger zerolog.Logger) *FCMProvider {
	return &FCMProvider{
		client: client,
		logger: logger.With().Str("component", "fcm").Logger(),
	}
}

// Send builds the FCM message with Android and APNs delivery hints and submits it.
func (p *FCMProvider) Send(ctx context.Context, msg Message) error {
	badge := 1
	message := &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}

	id, err := p.client.Send(ctx, message)
	if err != nil {
		return classifyFCM(err)
	}
	p.logger.Debug().Str("message_id", id).Msg("fcm message accepted")
	return nil
}

// classifyFCM maps Firebase error codes onto delivery kinds.
// INVALID_ARGUMENT also covers oversized or malformed payloads, so it only
// condemns the token when FCM names the registration token as the bad field.
func classifyFCM(err error) *DeliveryError {
	de := &DeliveryError{Provider: "fcm", Err: err}
	switch {
	case messaging.IsUnregistered(err):
		de.Kind, de.Code = KindPermanentInvalidToken, "registration-token-not-registered"
	case messaging.IsSenderIDMismatch(err):
		de.Kind, de.Code = KindPermanentInvalidToken, "mismatched-credential"
	case errorutils.IsInvalidArgument(err) && invalidTokenMessage(err):
		de.Kind, de.Code = KindPermanentInvalidToken, "invalid-registration-token"
	case errorutils.IsInvalidArgument(err):
		de.Kind, de.Code = KindUnknown, "invalid-argument"
	case errorutils.IsUnavailable(err):
		de.Kind, de.Code = KindTransient, "unavailable"
	case errorutils.IsInternal(err):
		de.Kind, de.Code = KindTransient, "internal"
	case errorutils.IsDeadlineExceeded(err):
		de.Kind, de.Code = KindTransient, "deadline-exceeded"
	case messaging.IsQuotaExceeded(err):
		de.Kind, de.Code = KindTransient, "quota-exceeded"
	case messaging.IsThirdPartyAuthError(err):
		de.Kind, de.Code = KindTransient, "third-party-auth-error"
	case ctxErr(err):
		de.Kind, de.Code = KindTransient, "timeout"
	default:
		de.Kind = KindUnknown
	}
	return de
}

func invalidTokenMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "registration token") && strings.Contains(msg, "not a valid")
}
