// Package codec turns cached values into bytes and back.
package codec

import "fmt"

type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

const (
	NameMsgpack = "msgpack"
	NameCBOR    = "cbor"
	NameJSON    = "json"
)

func New[V any](name string) (Codec[V], error) {
	switch name {
	case "", NameMsgpack:
		return Msgpack[V]{}, nil
	case NameCBOR:
		c, err := NewCBOR[V](false)
		if err != nil {
			return nil, err
		}
		return c, nil
	case NameJSON:
		return JSON[V]{}, nil
	default:
		return nil, fmt.Errorf("unknown cache codec %q", name)
	}
}
