package firebaseapp

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Setup creates the Firebase app shared by the identity verifier and the push sender.
// Without a credentials file the SDK falls back to application default credentials.
func Setup(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	return firebase.NewApp(ctx, conf, opts...)
}
