package dcodec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// cborEncMode uses Core Deterministic Encoding (RFC 8949 §4.2): the same value always encodes to
// the same bytes.
var cborEncMode cbor.EncMode //nolint:gochecknoglobals // immutable after init

var cborDecMode cbor.DecMode //nolint:gochecknoglobals // immutable after init

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	cborEncMode, err = encOptions.EncMode()
	if err != nil {
		panic("dcodec: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		// Only affects interface{} targets.
		DefaultMapType:  reflect.TypeOf(map[string]interface{}(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("dcodec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOREncoder encodes values as deterministic CBOR.
type CBOREncoder struct{}

// Encode implements Encoder.
func (CBOREncoder) Encode(v interface{}) ([]byte, error) {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return nil, wrapKind(ErrInvalidValue, err)
	}
	return data, nil
}

// CBORDecoder decodes a single CBOR data item.
type CBORDecoder struct{}

// Decode implements Decoder.
func (CBORDecoder) Decode(data []byte, v interface{}) error {
	if err := cborDecMode.Unmarshal(data, v); err != nil {
		var typeErr *cbor.UnmarshalTypeError
		var invalidErr *cbor.InvalidUnmarshalError
		switch {
		case errors.As(err, &typeErr):
			return wrapKind(ErrTypeMismatch, err)
		case errors.As(err, &invalidErr):
			return wrapKind(ErrInvalidValue, err)
		default:
			return wrapKind(ErrDataCorrupted, err)
		}
	}
	return nil
}
