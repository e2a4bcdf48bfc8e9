package catalog

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// LoadFromGCS reads the catalog JSON from a GCS object.
func LoadFromGCS(ctx context.Context, bucketName, objectName string) (*Catalog, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadFromGCS: create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadFromGCS: open catalog object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("LoadFromGCS: read catalog object: %w", err)
	}

	return parse(data)
}
