package planstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/opskit/internal/planner"
)

// Encode renders a plan in the given format. Keys are sorted in both formats.
func Encode(plan planner.Plan, format Format) ([]byte, error) {
	if plan == nil {
		plan = planner.New()
	}
	return EncodeDocument(plan, format)
}

// Decode parses a plan. Empty input decodes to an empty plan.
func Decode(data []byte, format Format) (planner.Plan, error) {
	plan := planner.New()
	if len(bytes.TrimSpace(data)) == 0 {
		return plan, nil
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &plan)
	case FormatJSON:
		err = json.Unmarshal(data, &plan)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
	}

	// "null" and "~" decode to a nil map.
	if plan == nil {
		plan = planner.New()
	}
	for project, branches := range plan {
		if branches == nil {
			return nil, fmt.Errorf("%w: project %q has no branch mapping", ErrMalformedPlan, project)
		}
	}
	plan.Prune()
	return plan, nil
}

// EncodeDocument renders any YAML/JSON compatible value.
func EncodeDocument(v interface{}, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
}

// DecodeDocument parses an arbitrary YAML or JSON document. Non-string YAML
// mapping keys are stringified so the result always has a JSON form.
func DecodeDocument(data []byte, format Format) (interface{}, error) {
	var v interface{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
		}
		return normalize(v)
	case FormatJSON:
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPlan, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
}

func normalize(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			n, err := normalize(child)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			key := fmt.Sprint(k)
			n, err := normalize(child)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []interface{}:
		for i, child := range t {
			n, err := normalize(child)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}
