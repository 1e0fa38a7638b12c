// Package storage archives voice cloning artifacts in a Supabase bucket so
// reference clips survive restarts of the cloning services.
package storage

import (
	"bytes"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

type Config struct {
	URL            string
	ServiceRoleKey string
	Bucket         string
}

type Storage struct {
	client *supabase.Client
	bucket string
}

func New(config Config) (*Storage, error) {
	client, err := supabase.NewClient(config.URL, config.ServiceRoleKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Storage{client: client, bucket: config.Bucket}, nil
}

func (s *Storage) Upload(key string, data []byte) error {
	if _, err := s.client.Storage.UploadFile(s.bucket, key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
