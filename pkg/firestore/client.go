package firestore

import (
	"context"
	"fmt"
	"log"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// NewClient creates a Firestore client for the given project.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*gfs.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore: project ID is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gfs.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	log.Println("[Firestore] Client initialized successfully")
	return client, nil
}
