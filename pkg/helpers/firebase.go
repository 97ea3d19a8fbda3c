package helpers

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// NewMessagingClient constructs the Firebase Cloud Messaging client once
// at startup. If credsPath is empty, Application Default Credentials are
// used. The client is passed by handle into the notification dispatcher;
// there is no package-level singleton.
func NewMessagingClient(ctx context.Context, credsPath string) (*messaging.Client, error) {
	var opts []option.ClientOption
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}
	return app.Messaging(ctx)
}
