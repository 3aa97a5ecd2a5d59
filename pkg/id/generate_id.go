package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// LoanNumber builds a loan number of the form PRT<YYYYMM><8 HEX>.
func LoanNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PRT%s%s", now.Format("200601"), suffix)
}

// CaisseCode builds a caisse code of the form FKM<NN><NAME>, where NAME is the
// association name stripped to its letters and uppercased. The order number is
// zero-padded to two digits.
func CaisseCode(order int, associationName string) string {
	var b strings.Builder
	for _, r := range associationName {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return fmt.Sprintf("FKM%02d%s", order, b.String())
}
