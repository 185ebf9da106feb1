// internal/registers/serial.go
package registers

import "strings"

// DecodeSerial turns the raw identity block into a serial number.
// Bytes are taken as Latin-1 and every NUL is dropped, wherever it appears.
func DecodeSerial(raw []byte) (string, error) {
	want := int(SerialCount) * 2
	if len(raw) < want {
		return "", &DecodeError{Start: SerialStart, Want: want, Got: len(raw)}
	}

	var sb strings.Builder
	for _, c := range raw[:want] {
		if c == 0 {
			continue
		}
		sb.WriteRune(rune(c))
	}
	return sb.String(), nil
}
