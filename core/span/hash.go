package span

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// hashText computes the BLAKE3 hash of a string and returns it as a hex string.
func hashText(s string) string {
	h := blake3.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// hashKey computes the BLAKE3 hash of a span key. Every field is length
// prefixed so that no two distinct keys share an encoding.
func hashKey(k Key) string {
	h := blake3.New()

	writeString := func(s string) {
		var n [binary.MaxVarintLen64]byte
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(s)))])
		h.Write([]byte(s))
	}
	writeInt := func(i int) {
		var n [binary.MaxVarintLen64]byte
		h.Write(n[:binary.PutVarint(n[:], int64(i))])
	}

	writeString(k.DocText)
	writeInt(k.Start)
	writeInt(k.End)
	if label, ok := labelString(k.Label); ok {
		writeString(fmt.Sprintf("%T", k.Label))
		writeString(label)
	} else {
		writeString("")
	}

	return hex.EncodeToString(h.Sum(nil))
}
