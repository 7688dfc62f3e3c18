// Package jpk implements the JPK compression container: a 16-byte
// header plus one of four payload encodings (Raw, Huffman-only,
// LZ-only, Huffman+LZ).
package jpk

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the fixed little-endian magic value stored in the JPK header.
const Magic uint32 = 0x1A524B4A

// CompType enumerates the four JPK payload encodings.
type CompType uint16

const (
	Raw        CompType = 0
	HuffmanRaw CompType = 2
	Lz         CompType = 3
	HuffmanLz  CompType = 4
)

const (
	headerSize    = 16
	encodeVersion = 264
	startOffset   = 0x10
)

// ErrMalformedHeader is returned when a buffer is too short to hold a
// JPK header or the header's magic does not match.
var ErrMalformedHeader = errors.New("jpk: malformed header")

// ErrTruncatedPayload is returned when a compressed stream ends before
// the decoder has produced out_size bytes.
var ErrTruncatedPayload = errors.New("jpk: truncated payload")

// ErrUnknownCompType is returned for a comp_type the decoder does not
// recognize.
var ErrUnknownCompType = errors.New("jpk: unknown comp_type")

// Header is the fixed-width JPK header.
type Header struct {
	Magic       uint32
	Version     uint16
	CompType    CompType
	StartOffset uint32
	OutSize     uint32
}

// ParseHeader reads a JPK header from the front of buf.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedHeader, headerSize, len(buf))
	}
	h := Header{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		CompType:    CompType(binary.LittleEndian.Uint16(buf[6:8])),
		StartOffset: binary.LittleEndian.Uint32(buf[8:12]),
		OutSize:     binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %#x", ErrMalformedHeader, h.Magic)
	}
	return h, nil
}

// IsJPK reports whether buf begins with the little-endian JPK magic.
func IsJPK(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	return binary.LittleEndian.Uint32(buf[0:4]) == Magic
}

// Decode unwraps a JPK container, dispatching on the header's comp_type.
func Decode(buf []byte) ([]byte, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	if uint32(len(buf)) < h.StartOffset {
		return nil, fmt.Errorf("%w: start_offset %d beyond buffer of %d", ErrMalformedHeader, h.StartOffset, len(buf))
	}
	payload := buf[h.StartOffset:]

	switch h.CompType {
	case Raw:
		if uint32(len(payload)) < h.OutSize {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedPayload, h.OutSize, len(payload))
		}
		out := make([]byte, h.OutSize)
		copy(out, payload[:h.OutSize])
		return out, nil

	case HuffmanRaw:
		return decodeHuffman(payload, int(h.OutSize))

	case Lz:
		return DecodeLZ(payload, int(h.OutSize))

	case HuffmanLz:
		return decodeHuffmanLZ(payload, int(h.OutSize))

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompType, h.CompType)
	}
}

// EncodeOption selects which comp_type Encode should use.
type EncodeOption CompType

const (
	EncodeRaw       EncodeOption = EncodeOption(Raw)
	EncodeHuffman   EncodeOption = EncodeOption(HuffmanRaw)
	EncodeLz        EncodeOption = EncodeOption(Lz)
	EncodeHuffmanLz EncodeOption = EncodeOption(HuffmanLz)
)

// Encode wraps decoded in a JPK container using the requested encoding.
func Encode(decoded []byte, opt EncodeOption) []byte {
	var body []byte
	switch CompType(opt) {
	case Raw:
		body = decoded
	case HuffmanRaw:
		body = encodeHuffman(decoded)
	case Lz:
		body = EncodeLZ(decoded)
	case HuffmanLz:
		body = encodeHuffmanLZ(decoded)
	default:
		body = decoded
	}

	out := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], Magic)
	binary.LittleEndian.PutUint16(out[4:6], encodeVersion)
	binary.LittleEndian.PutUint16(out[6:8], uint16(opt))
	binary.LittleEndian.PutUint32(out[8:12], startOffset)
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(decoded)))
	copy(out[headerSize:], body)
	return out
}
