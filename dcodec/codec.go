// Package dcodec provides the encoders and decoders that a World hands out.
//
// Encoder and Decoder are one-method interfaces, so a caller never knows (or cares) whether it
// has been given JSON, CBOR, YAML, or a MockEncoder that a test has primed.
package dcodec

import (
	"github.com/pkg/errors"
)

// Sentinel errors, for use with errors.Is.
var (
	// ErrInvalidValue means that a value could not be encoded.
	ErrInvalidValue = errors.New("invalid value")
	// ErrDataCorrupted means that the input is not well-formed.
	ErrDataCorrupted = errors.New("data corrupted")
	// ErrTypeMismatch means that the input is well-formed, but does not fit the target.
	ErrTypeMismatch = errors.New("type mismatch")
)

// codecError attaches one of the sentinel errors to the error that the underlying library
// returned, so that errors.Is matches either.
type codecError struct {
	kind error
	err  error
}

func (e *codecError) Error() string   { return e.kind.Error() + ": " + e.err.Error() }
func (e *codecError) Unwrap() []error { return []error{e.kind, e.err} }

func wrapKind(kind, err error) error {
	if err == nil {
		return nil
	}
	return &codecError{kind: kind, err: err}
}

// An Encoder serializes a value.
type Encoder interface {
	Encode(v interface{}) ([]byte, error)
}

// A Decoder deserializes data into the value pointed to by v.
type Decoder interface {
	Decode(data []byte, v interface{}) error
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(v interface{}) ([]byte, error)

// Encode calls fn(v).
func (fn EncoderFunc) Encode(v interface{}) ([]byte, error) { return fn(v) }

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte, v interface{}) error

// Decode calls fn(data, v).
func (fn DecoderFunc) Decode(data []byte, v interface{}) error { return fn(data, v) }

// Names accepted by ByName.
const (
	NameJSON  = "json"
	NameJSONC = "jsonc"
	NameCBOR  = "cbor"
	NameYAML  = "yaml"
)

// ByName returns the default Encoder and Decoder for a codec name: "json", "jsonc" (JSON, but the
// decoder accepts comments and trailing commas), "cbor", or "yaml".
func ByName(name string) (Encoder, Decoder, error) {
	switch name {
	case NameJSON:
		return JSONEncoder{}, JSONDecoder{}, nil
	case NameJSONC:
		return JSONEncoder{}, JSONDecoder{AllowComments: true}, nil
	case NameCBOR:
		return CBOREncoder{}, CBORDecoder{}, nil
	case NameYAML:
		return YAMLEncoder{}, YAMLDecoder{}, nil
	default:
		return nil, nil, errors.Errorf("unknown codec %q", name)
	}
}
