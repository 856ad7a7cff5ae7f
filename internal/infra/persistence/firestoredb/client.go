// Package firestoredb implements the persistence layer on Cloud Firestore.
package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// NewClient initializes a Firebase app and returns its Firestore client.
// An empty credentialsPath falls back to application default credentials;
// FIRESTORE_EMULATOR_HOST is honored by the client.
func NewClient(ctx context.Context, projectID, credentialsPath string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	var appConfig *firebase.Config
	if projectID != "" {
		appConfig = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Firestore client")
	}

	return client, nil
}
