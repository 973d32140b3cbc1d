package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
)

// decodePayload decodes body as JSON. Numbers are kept as json.Number so the
// payload round-trips verbatim. Bodies not declared as JSON that fail to parse
// are returned as plain strings; empty bodies yield nil.
func decodePayload(contentType string, body []byte) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	payload, err := decodeJSON(body)
	if err == nil {
		return payload, nil
	}
	if isJSONContentType(contentType) {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return string(body), nil
}

func decodeJSON(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return payload, nil
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
