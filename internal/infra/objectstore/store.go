package objectstore

import (
	"context"

	apperrors "github.com/csdewars/ewars/pkg/errors"
)

// Object describes a stored blob.
type Object struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	ETag        string `json:"etag,omitempty"`
}

// Store persists boundary files and exports.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (Object, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

func notFound(key string, err error) error {
	return apperrors.Wrap(apperrors.CodeNotFound, "object "+key+" not found", err)
}
