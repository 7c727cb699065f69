package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/yaron8/latency-metrics/telemetrics"
)

// Both fields are optional; null is treated as absent.
const metricsRequestSchema = `{
  "type": "object",
  "properties": {
    "regions": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    },
    "threshold_ms": {"type": ["number", "null"]}
  }
}`

var metricsRequestValidator = mustCompileSchema("metrics_request.json", metricsRequestSchema)

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schema))
	if err != nil {
		panic(fmt.Sprintf("parse schema %s: %v", name, err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	sch, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return sch
}

// decodeMetricsRequest reads and validates a POST /metrics body.
func (api *APIServer) decodeMetricsRequest(w http.ResponseWriter, r *http.Request) (telemetrics.MetricsRequest, *APIError) {
	var req telemetrics.MetricsRequest

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, api.config.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, ErrBodyTooLarge
		}
		return req, ErrInvalidJSON
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return req, ErrInvalidJSON
	}

	if err := metricsRequestValidator.Validate(inst); err != nil {
		return req, invalidRequest(schemaDetails(err))
	}

	// The schema guarantees the shape; this can still fail on out-of-range numbers.
	if err := json.Unmarshal(body, &req); err != nil {
		return req, invalidRequest(err.Error())
	}

	return req, nil
}

// schemaDetails drops the schema location header line of a validation error
// and keeps the per-field messages.
func schemaDetails(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[i+1:]
	}

	var parts []string
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}
