// Package gameid mints table identifiers: UUIDv7 values encoded as
// 26-character Crockford base32 strings. The timestamp prefix keeps ids
// sortable by creation time.
package gameid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator mints ids from an injectable randomness source and clock,
// so tests can produce stable values.
type Generator struct {
	rand io.Reader
	now  func() time.Time
}

// NewGenerator returns a generator reading randomness from r. A nil r
// uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r, now: time.Now}
}

// New mints an id with the default generator.
func New() string {
	return NewGenerator(nil).New()
}

// New mints one id.
func (g *Generator) New() string {
	var u [16]byte

	ms := g.now().UnixMilli()
	u[0] = byte(ms >> 40)
	u[1] = byte(ms >> 32)
	u[2] = byte(ms >> 24)
	u[3] = byte(ms >> 16)
	u[4] = byte(ms >> 8)
	u[5] = byte(ms)

	if _, err := io.ReadFull(g.rand, u[6:]); err != nil {
		panic("gameid: randomness unavailable: " + err.Error())
	}

	// UUIDv7 version and variant bits.
	u[6] = (u[6] & 0x0f) | 0x70
	u[8] = (u[8] & 0x3f) | 0x80

	return encode(u)
}

// encode packs 128 bits into 26 base32 characters. Two zero bits are
// prepended so the total is a multiple of 5, which also caps the first
// character at '7'.
func encode(u [16]byte) string {
	out := make([]byte, 0, 26)
	acc := uint(0)
	nbits := uint(2)
	for _, b := range u {
		acc = acc<<8 | uint(b)
		nbits += 8
		for nbits >= 5 {
			out = append(out, alphabet[(acc>>(nbits-5))&0x1f])
			nbits -= 5
		}
	}
	return string(out)
}

// Validate checks that id is a well-formed 26-character base32 game id.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("game id must be 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
