// internal/registers/decode.go
package registers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBlock matches every DecodeError.
var ErrShortBlock = errors.New("registers: short block")

// DecodeError reports a response shorter than its block layout.
type DecodeError struct {
	Start uint16
	Want  int
	Got   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("registers: block %d: need %d bytes, got %d", e.Start, e.Want, e.Got)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrShortBlock
}

// Decode extracts every field of block from raw.
// Decoding is structural only: NaN and Inf are returned as-is.
// Bytes beyond the block size are ignored.
func Decode(block RegisterBlock, raw []byte) (map[string]float64, error) {
	if len(raw) < block.Size() {
		return nil, &DecodeError{Start: block.Start, Want: block.Size(), Got: len(raw)}
	}

	out := make(map[string]float64, len(block.Fields))
	for _, f := range block.Fields {
		b := raw[f.Offset : f.Offset+f.Encoding.Width()]

		switch f.Encoding {
		case UInt16BE:
			out[f.Name] = float64(binary.BigEndian.Uint16(b))
		case Float32BE:
			out[f.Name] = float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
		default:
			return nil, fmt.Errorf("registers: field %s: unsupported %s", f.Name, f.Encoding)
		}
	}
	return out, nil
}
