package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MarshalJSON renders a Result as an Envelope.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Envelope())
}

// UnmarshalJSON accepts the Envelope shape.
func (r *Result) UnmarshalJSON(data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch env.Status {
	case StatusOK:
		*r = Success(env.Message)
	case StatusError:
		*r = Failure(env.Error)
	default:
		return fmt.Errorf("invalid status value: %q (must be 'ok' or 'error')", env.Status)
	}
	return nil
}

// Envelope converts a Result to its wire form.
func (r Result) Envelope() Envelope {
	if r.OK {
		return Envelope{Status: StatusOK, Message: r.Message}
	}
	return Envelope{Status: StatusError, Error: r.Message}
}

// EncodeResult writes r as a single JSON line.
func EncodeResult(w io.Writer, r Result) error {
	if err := json.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// wireRequest carries both the canonical keys and the legacy quick-search
// aliases ("type", "action").
type wireRequest struct {
	Kind        string `json:"kind"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Path        string `json:"path"`
	ActionName  string `json:"action_name"`
	Action      string `json:"action"`
	Category    string `json:"category"`
}

// DecodeActionRequest reads one ActionRequest from r.
// Unknown fields are ignored and canonical keys win over aliases. The kind is
// not validated here: classifying it is the router's job.
func DecodeActionRequest(r io.Reader) (ActionRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ActionRequest{}, fmt.Errorf("failed to read request: %w", err)
	}
	return ParseActionRequest(data)
}

// ParseActionRequest is DecodeActionRequest for an in-memory payload.
func ParseActionRequest(data []byte) (ActionRequest, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return ActionRequest{}, fmt.Errorf("empty request body")
	}

	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return ActionRequest{}, fmt.Errorf("request is not valid JSON: %w", err)
	}

	req := ActionRequest{
		Kind:        Kind(firstNonEmpty(w.Kind, w.Type)),
		Title:       w.Title,
		Description: w.Description,
		Icon:        w.Icon,
		Path:        strings.TrimSpace(w.Path),
		ActionName:  strings.TrimSpace(firstNonEmpty(w.ActionName, w.Action)),
		Category:    w.Category,
	}
	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
