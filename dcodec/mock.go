package dcodec

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// MockEncoder is an Encoder whose result a test decides.  Every call to Encode returns whatever
// NextEncode returns; if NextEncode is nil, Encode fails with ErrInvalidValue.
//
// NextEncode may be replaced between calls (but use SetNextEncode if Encode may be running
// concurrently).
type MockEncoder struct {
	mu         sync.Mutex
	NextEncode func(v interface{}) ([]byte, error)
}

// SetNextEncode replaces NextEncode.
func (m *MockEncoder) SetNextEncode(fn func(v interface{}) ([]byte, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NextEncode = fn
}

// Encode implements Encoder.
func (m *MockEncoder) Encode(v interface{}) ([]byte, error) {
	m.mu.Lock()
	next := m.NextEncode
	m.mu.Unlock()
	if next == nil {
		return nil, errors.Wrapf(ErrInvalidValue, "mock encoder: %T", v)
	}
	return next(v)
}

// MockDecoder is a Decoder whose result a test decides.  Every call to Decode calls NextDecode
// with the input, and stores the value it returns into the target; if NextDecode is nil, Decode
// fails with ErrDataCorrupted.  If the value is not assignable to what the target points to,
// Decode fails with ErrTypeMismatch.
type MockDecoder struct {
	mu         sync.Mutex
	NextDecode func(data []byte) (interface{}, error)
}

// SetNextDecode replaces NextDecode.
func (m *MockDecoder) SetNextDecode(fn func(data []byte) (interface{}, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NextDecode = fn
}

// Decode implements Decoder.
func (m *MockDecoder) Decode(data []byte, v interface{}) error {
	m.mu.Lock()
	next := m.NextDecode
	m.mu.Unlock()
	if next == nil {
		return errors.Wrap(ErrDataCorrupted, "mock decoder")
	}

	decoded, err := next(data)
	if err != nil {
		return err
	}

	target := reflect.ValueOf(v)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return errors.Wrapf(ErrInvalidValue, "mock decoder: target must be a non-nil pointer, not %T", v)
	}
	elem := target.Elem()
	if decoded == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	val := reflect.ValueOf(decoded)
	if !val.Type().AssignableTo(elem.Type()) {
		return errors.Wrapf(ErrTypeMismatch, "mock decoder: cannot store %T in %s", decoded, elem.Type())
	}
	elem.Set(val)
	return nil
}
