package dcodec

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/datawire/dworld/derror"
)

// YAMLEncoder encodes values as a single YAML document.
type YAMLEncoder struct {
	// Indent is the number of spaces per nesting level; zero means the library default of 4.
	Indent int
}

// Encode implements Encoder.
func (e YAMLEncoder) Encode(v interface{}) (_ []byte, err error) {
	defer func() {
		// yaml.v3 panics outright on channels and functions.
		if perr := derror.PanicToError(recover()); perr != nil {
			err = wrapKind(ErrInvalidValue, perr)
		}
	}()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if e.Indent > 0 {
		enc.SetIndent(e.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, wrapKind(ErrInvalidValue, err)
	}
	if err := enc.Close(); err != nil {
		return nil, wrapKind(ErrInvalidValue, err)
	}
	return buf.Bytes(), nil
}

// YAMLDecoder decodes the first YAML document in its input.
type YAMLDecoder struct {
	// KnownFields rejects mapping keys that do not correspond to a field of the target struct.
	KnownFields bool
}

// Decode implements Decoder.
func (d YAMLDecoder) Decode(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(d.KnownFields)
	if err := dec.Decode(v); err != nil {
		var typeErr *yaml.TypeError
		switch {
		case errors.Is(err, io.EOF):
			return wrapKind(ErrDataCorrupted, errors.New("yaml: empty document"))
		case errors.As(err, &typeErr):
			return wrapKind(ErrTypeMismatch, err)
		default:
			return wrapKind(ErrDataCorrupted, err)
		}
	}
	return nil
}
