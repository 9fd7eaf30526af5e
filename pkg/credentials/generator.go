package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Character classes for generated passwords. Visually confusable
// characters (0/O, 1/l/I) are excluded so credentials survive being
// read aloud or copied from a printed hand-out.
const (
	upperAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerAlphabet  = "abcdefghijkmnpqrstuvwxyz"
	digitAlphabet  = "23456789"
	symbolAlphabet = "!@#$%&*+?"

	strongLength = 12

	// MinBcryptCost is the floor for the hashing work factor.
	MinBcryptCost = 12
)

// Generator produces temporary secrets and their one-way hashes.
type Generator struct {
	cost int
}

// NewGenerator builds a Generator with the given bcrypt cost. Costs
// below MinBcryptCost are clamped up.
func NewGenerator(cost int) *Generator {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &Generator{cost: cost}
}

// StrongPassword returns a 12-character password guaranteed to contain
// at least one uppercase letter, one lowercase letter, one digit and
// one symbol. The final order is shuffled so the required classes do
// not sit in predictable positions.
func (g *Generator) StrongPassword() (string, error) {
	combined := upperAlphabet + lowerAlphabet + digitAlphabet + symbolAlphabet

	chars := make([]byte, 0, strongLength)
	for _, alphabet := range []string{upperAlphabet, lowerAlphabet, digitAlphabet, symbolAlphabet} {
		c, err := pickByte(alphabet)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < strongLength {
		c, err := pickByte(combined)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	if err := shuffle(chars); err != nil {
		return "", err
	}
	return string(chars), nil
}

// MemorablePassword returns a secret a young student can read and
// type: two dictionary words each paired with one digit, separated by
// a hyphen (e.g. "luna7-gato3").
func (g *Generator) MemorablePassword() (string, error) {
	first, err := pickWord()
	if err != nil {
		return "", err
	}
	second, err := pickWord()
	if err != nil {
		return "", err
	}
	d1, err := pickByte(digitAlphabet)
	if err != nil {
		return "", err
	}
	d2, err := pickByte(digitAlphabet)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%c-%s%c", first, d1, second, d2), nil
}

// Hash derives the bcrypt hash stored for authentication. The
// plaintext is never persisted outside the temporary_password column.
func (g *Generator) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), g.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches the stored hash.
func (g *Generator) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func pickByte(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, fmt.Errorf("random byte: %w", err)
	}
	return alphabet[n.Int64()], nil
}

func pickWord() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(wordlist))))
	if err != nil {
		return "", fmt.Errorf("random word: %w", err)
	}
	return wordlist[n.Int64()], nil
}

// Fisher-Yates with a crypto source.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("shuffle: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
