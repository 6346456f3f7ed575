package extractor

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema constrains the shape of what the extraction service may
// return. No field is required here: missing fields are a review concern,
// not a transport failure. Amounts may arrive as numbers or numeric
// strings; normalization coerces either. Extra fields are allowed on the
// wire and dropped during normalization.
const payloadSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"supplier_name":   {"type": ["string", "null"]},
		"supplier_tax_id": {"type": ["string", "null"]},
		"invoice_number":  {"type": ["string", "null"]},
		"invoice_date":    {"type": ["string", "null"]},
		"base_amount":     {"type": ["number", "string", "null"]},
		"vat_amount":      {"type": ["number", "string", "null"]},
		"total_amount":    {"type": ["number", "string", "null"]},
		"vat_rate":        {"type": ["number", "string", "null"]}
	}
}`

var schema = jsonschema.MustCompileString("extractor-payload.json", payloadSchema)

func validatePayload(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return nil
}
