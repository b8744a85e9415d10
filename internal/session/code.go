package session

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
)

// Random draws before falling back to a linear probe
const maxCodeDraws = 32

// codeSpace describes the set of n-digit codes without a leading zero.
// For 4 digits it is 1000..9999.
type codeSpace struct {
	digits int
	min    int64
	size   int64
}

func newCodeSpace(digits int) codeSpace {
	min := int64(math.Pow10(digits - 1))
	return codeSpace{
		digits: digits,
		min:    min,
		size:   min * 9,
	}
}

func (c codeSpace) format(n int64) string {
	return fmt.Sprintf("%0*d", c.digits, c.min+n)
}

func (c codeSpace) random() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(c.size))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// next picks a code for which taken returns false.
// Returns false if every code is taken.
func (c codeSpace) next(taken func(string) bool) (string, bool, error) {
	for i := 0; i < maxCodeDraws; i++ {
		n, err := c.random()
		if err != nil {
			return "", false, err
		}
		if code := c.format(n); !taken(code) {
			return code, true, nil
		}
	}

	// Dense space. Probe from random offset
	start, err := c.random()
	if err != nil {
		return "", false, err
	}
	for i := int64(0); i < c.size; i++ {
		code := c.format((start + i) % c.size)
		if !taken(code) {
			return code, true, nil
		}
	}

	return "", false, nil
}
