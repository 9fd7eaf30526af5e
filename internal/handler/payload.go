package handler

import (
	"encoding/json"

	"github.com/noah-isme/aula-admin-api/internal/models"
)

// optionalRefPayload distinguishes an absent JSON field from an
// explicit null so partial updates can clear optional relations.
type optionalRefPayload struct {
	present bool
	value   *string
}

// UnmarshalJSON records presence; a literal null means "clear".
func (p *optionalRefPayload) UnmarshalJSON(data []byte) error {
	p.present = true
	if string(data) == "null" {
		p.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p.value = &s
	return nil
}

func (p optionalRefPayload) ref() models.OptionalRef {
	if !p.present {
		return models.Unchanged()
	}
	if p.value == nil {
		return models.Clear()
	}
	return models.SetTo(*p.value)
}
