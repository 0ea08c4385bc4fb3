package dcodec

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
)

// JSONEncoder encodes values as JSON.  The zero value produces compact output like json.Marshal,
// except that it does not escape HTML characters unless EscapeHTML is set.
type JSONEncoder struct {
	Prefix     string
	Indent     string
	EscapeHTML bool
}

// Encode implements Encoder.
func (e JSONEncoder) Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(e.EscapeHTML)
	enc.SetIndent(e.Prefix, e.Indent)
	if err := enc.Encode(v); err != nil {
		return nil, wrapKind(ErrInvalidValue, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// JSONDecoder decodes a single JSON value.
type JSONDecoder struct {
	DisallowUnknownFields bool
	UseNumber             bool
	// AllowComments accepts JSONC: "//" and "/* */" comments and trailing commas.
	AllowComments bool
}

// Decode implements Decoder.
func (d JSONDecoder) Decode(data []byte, v interface{}) error {
	if d.AllowComments {
		data = jsonc.ToJSON(data)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if d.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if d.UseNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		return classifyJSONError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return wrapKind(ErrDataCorrupted, errors.New("json: unexpected data after top-level value"))
	}
	return nil
}

func classifyJSONError(err error) error {
	var (
		typeErr    *json.UnmarshalTypeError
		invalidErr *json.InvalidUnmarshalError
	)
	switch {
	case errors.As(err, &typeErr):
		return wrapKind(ErrTypeMismatch, err)
	case errors.As(err, &invalidErr):
		return wrapKind(ErrInvalidValue, err)
	default:
		// Syntax errors, unexpected EOF, and unknown fields.
		return wrapKind(ErrDataCorrupted, err)
	}
}

// LiveJSONEncoder returns a producer of Encoders: each call starts from a default JSONEncoder and
// passes it through settings (which may be nil).
func LiveJSONEncoder(settings func(JSONEncoder) JSONEncoder) func() Encoder {
	return func() Encoder {
		var e JSONEncoder
		if settings != nil {
			e = settings(e)
		}
		return e
	}
}

// LiveJSONDecoder returns a producer of Decoders: each call starts from a default JSONDecoder and
// passes it through settings (which may be nil).
func LiveJSONDecoder(settings func(JSONDecoder) JSONDecoder) func() Decoder {
	return func() Decoder {
		var d JSONDecoder
		if settings != nil {
			d = settings(d)
		}
		return d
	}
}
