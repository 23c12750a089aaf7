package eventtypes

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/openmeet/backend/internal/models"
)

var validate = validator.New()

// DecodeMetadata parses and validates an event-type metadata blob. A nil or JSON
// null blob decodes to empty metadata. An error means the event type must be
// excluded from public listings; callers log it and continue with the rest.
func DecodeMetadata(raw json.RawMessage) (*models.EventTypeMetadata, error) {
	meta := &models.EventTypeMetadata{}
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, meta); err != nil {
			return nil, fmt.Errorf("decode event type metadata: %w", err)
		}
	}
	if err := validate.Struct(meta); err != nil {
		return nil, fmt.Errorf("validate event type metadata: %w", err)
	}
	return meta, nil
}
