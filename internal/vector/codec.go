package vector

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/ryori/internal/models"
)

// hexPrefix is how PostgreSQL renders bytea columns as text.
const hexPrefix = `\x`

// DecodeHex decodes a hex string of little-endian float32 bytes. A leading `\x`
// or `0x` is accepted. Buffers whose byte length is not a multiple of 4 are rejected.
func DecodeHex(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, hexPrefix):
		s = s[len(hexPrefix):]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode embedding hex: %v", models.ErrData, err)
	}
	return DecodeBytes(b)
}

// DecodeBytes decodes little-endian float32 bytes.
func DecodeBytes(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: embedding buffer length %d is not a multiple of 4", models.ErrData, len(b))
	}
	return bytesToFloat32Slice(b), nil
}

// EncodeHex is the inverse of DecodeHex. The result carries the `\x` prefix.
func EncodeHex(v []float32) string {
	return hexPrefix + hex.EncodeToString(float32SliceToBytes(v))
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
