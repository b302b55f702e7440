package meeting

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// codeAlphabet excludes visually confusable characters (0, 1, I, O).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeGroupLen = 3

var codePattern = regexp.MustCompile(`^[` + codeAlphabet + `]{3}-[` + codeAlphabet + `]{3}$`)

// NewCode generates a shareable meeting code of the form "ABC-234".
// With a 32-character alphabet and 6 drawn positions the space is large
// enough that collisions among concurrently active rooms are negligible;
// uniqueness is only checked by the room lookup returning "not found".
func NewCode() string {
	var b strings.Builder
	b.Grow(codeGroupLen*2 + 1)
	for i := 0; i < codeGroupLen*2; i++ {
		if i == codeGroupLen {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic("meeting: reading random source: " + err.Error())
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String()
}

// ValidCode reports whether s is a well-formed meeting code.
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// NormalizeCode upper-cases a user-entered code for lookup.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
