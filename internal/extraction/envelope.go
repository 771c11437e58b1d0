package extraction

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docassist/internal/common"
)

// Envelope is the reply shape of the extraction endpoint. ExtractedData is
// kept raw: its shape is unconstrained and is decoded by the normalizer.
type Envelope struct {
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	DownloadURL   string          `json:"download_url"`
	ExtractedData json.RawMessage `json:"extracted_data"`
}

// StatusSuccess is the only status the service uses for a completed run.
const StatusSuccess = "success"

// errorBody is the transport-failure reply shape.
type errorBody struct {
	Detail string `json:"detail"`
}

const envelopeSchemaJSON = `{
	"type": "object",
	"properties": {
		"status": {"type": "string", "minLength": 1},
		"message": {"type": "string"},
		"download_url": {"type": "string"}
	},
	"required": ["status"]
}`

var envelopeSchema = jsonschema.MustCompileString("envelope.json", envelopeSchemaJSON)

// parseEnvelope validates a 2xx reply against the envelope schema and
// decodes it. A reply that does not carry a valid envelope is a domain
// error: the transport succeeded but the service broke its contract.
func parseEnvelope(body []byte) (*Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, common.DomainErrorf("malformed service reply: %v", err)
	}
	if err := envelopeSchema.Validate(generic); err != nil {
		return nil, common.DomainErrorf("service reply violates envelope contract: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, common.DomainErrorf("decode service reply: %v", err)
	}
	return &env, nil
}
