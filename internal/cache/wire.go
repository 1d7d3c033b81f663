package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	wireVersion byte = 1
	wireHeader       = 4 + 1 + 8
)

var (
	errCorrupt = errors.New("read cache: corrupt entry")
	wireMagic  = [...]byte{'B', 'L', 'O', 'G'}
)

// magic(4) | ver(1) | writtenAt unix nanos (i64 be) | payload
func encodeEntry(writtenAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(wireHeader + len(payload))

	buf.Write(wireMagic[:])
	buf.WriteByte(wireVersion)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], uint64(writtenAt.UnixNano()))
	buf.Write(u8[:])

	buf.Write(payload)
	return buf.Bytes()
}

func decodeEntry(b []byte) (time.Time, []byte, error) {
	if len(b) < wireHeader || !bytes.Equal(b[:4], wireMagic[:]) || b[4] != wireVersion {
		return time.Time{}, nil, errCorrupt
	}
	nanos := int64(binary.BigEndian.Uint64(b[5:13]))
	return time.Unix(0, nanos), b[wireHeader:], nil
}
