package secure

import "encoding/binary"

// SignatureData returns the bytes signed for one encrypted file: wrapped key,
// IV, then the encrypted, compressed and raw digests. Nil fields are
// omitted. Each digest contributes its sum followed by its big-endian length.
func SignatureData(wrappedKey, iv []byte, encrypted, compressed, raw *Digest) []byte {
	var b []byte
	b = append(b, wrappedKey...)
	b = append(b, iv...)
	for _, d := range []*Digest{encrypted, compressed, raw} {
		if d == nil {
			continue
		}
		b = append(b, d.Data...)
		b = binary.BigEndian.AppendUint64(b, uint64(d.Length))
	}
	return b
}
