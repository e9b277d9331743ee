package browser

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrBigInt matches the page-side failure of serializing a BigInt.
var ErrBigInt = errors.New("Do not know how to serialize a BigInt")

// EvalResult is a script return value as handed back by an engine.
type EvalResult struct {
	// Undefined is set when the script returned undefined.
	Undefined bool
	// Unserializable carries the literal of a value JSON cannot encode:
	// NaN, Infinity, -Infinity, -0 or a BigInt such as 12n.
	Unserializable string
	// JSON is the encoded value otherwise.
	JSON json.RawMessage
}

// String renders the value the way JSON.stringify would, except that a
// top-level undefined becomes the text "undefined".
func (r EvalResult) String() (string, error) {
	if r.Undefined {
		return "undefined", nil
	}

	switch r.Unserializable {
	case "":
	case "NaN", "Infinity", "-Infinity":
		return "null", nil
	case "-0":
		return "0", nil
	default:
		if strings.HasSuffix(r.Unserializable, "n") {
			return "", ErrBigInt
		}
		return "null", nil
	}

	if len(bytes.TrimSpace(r.JSON)) == 0 {
		return "null", nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, r.JSON); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EvalWrapper turns a function body into an expression that yields a
// classified result object. Engines without native unserializable value
// reporting evaluate this and decode it with DecodeWrapped.
func EvalWrapper(body string) string {
	return `(async () => {
  const __v = await (async function() {
` + body + `
  })();
  if (__v === undefined) return { kind: "undefined" };
  if (typeof __v === "bigint") return { kind: "unserializable", value: __v.toString() + "n" };
  if (typeof __v === "number" && (!Number.isFinite(__v) || Object.is(__v, -0))) {
    return { kind: "unserializable", value: Object.is(__v, -0) ? "-0" : String(__v) };
  }
  const __s = JSON.stringify(__v);
  if (__s === undefined) return { kind: "undefined" };
  return { kind: "json", value: __s };
})()`
}

// DecodeWrapped converts the object produced by EvalWrapper.
func DecodeWrapped(v any) (EvalResult, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return EvalResult{}, errors.New("unexpected evaluation result shape")
	}
	kind, _ := m["kind"].(string)
	value, _ := m["value"].(string)

	switch kind {
	case "undefined":
		return EvalResult{Undefined: true}, nil
	case "unserializable":
		return EvalResult{Unserializable: value}, nil
	case "json":
		return EvalResult{JSON: json.RawMessage(value)}, nil
	default:
		return EvalResult{}, errors.New("unexpected evaluation result kind " + kind)
	}
}
