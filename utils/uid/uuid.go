package uid

import (
	"encoding/base64"

	uuid "github.com/satori/go.uuid"
)

// NewID returns a short random id, the first 12 bytes of a v4 uuid in
// url safe base64
func NewID() string {
	id := uuid.NewV4()
	return base64.RawURLEncoding.EncodeToString(id.Bytes()[:12])
}

// ForName returns the id derived from name, stable across runs
func ForName(name string) string {
	id := uuid.NewV5(uuid.NamespaceURL, name)
	return base64.RawURLEncoding.EncodeToString(id.Bytes()[:12])
}
