package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID mints a collection-scoped record key, e.g. "crs_5f3a...".
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
