package documents

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewClient инициализирует Firebase App и возвращает клиент Firestore
// Без credentialsFile используются Application Default Credentials
// (или FIRESTORE_EMULATOR_HOST для локального эмулятора)
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: init firebase app: %w", ErrConnect, err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: get firestore client: %w", ErrConnect, err)
	}

	return client, nil
}
