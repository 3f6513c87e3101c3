package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Object describes a stored export.
type Object struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	ETag     string `json:"etag,omitempty"`
}

// ObjectStore puts draw exports somewhere they can be fetched from.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ExportKey is the object key of one export artifact of a draw.
func ExportKey(drawID string, version int, name string) string {
	return path.Join("draws", drawID, "v"+strconv.Itoa(version), name)
}

// publicURL joins key onto base. An empty or unparsable base gives "".
func publicURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(key, "/")
	return u.String()
}
