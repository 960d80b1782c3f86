package push

import (
	"context"
	"errors"
)

// Router sends Expo-issued tokens to the Expo provider and everything else to FCM.
// Either provider may be nil when it is not configured.
type Router struct {
	fcm  Provider
	expo Provider
}

func NewRouter(fcm, expo Provider) *Router {
	return &Router{fcm: fcm, expo: expo}
}

var errNoProvider = errors.New("no push provider configured for token")

func (r *Router) Send(ctx context.Context, msg Message) error {
	p := r.fcm
	if IsExpoToken(msg.Token) {
		p = r.expo
	}
	if p == nil {
		return &DeliveryError{Kind: KindUnknown, Provider: "router", Err: errNoProvider}
	}
	return p.Send(ctx, msg)
}

func ctxErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
