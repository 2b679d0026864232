package storage

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidURI is returned when a storage address is not a parseable gs:// URI.
var ErrInvalidURI = errors.New("invalid GCS URI")

var gcsURIPattern = regexp.MustCompile(`^gs://([^/]+)/(.+)$`)

// URI builds a gs://bucket/object address. Leading slashes on the object
// path are dropped so callers can join path segments freely.
func URI(bucket, object string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, strings.TrimLeft(object, "/"))
}

// ParseURI splits a gs://bucket/object address into its bucket and object
// parts. The object part must be non-empty.
func ParseURI(uri string) (bucket, object string, err error) {
	m := gcsURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	return m[1], m[2], nil
}
