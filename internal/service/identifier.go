package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/aula-admin-api/internal/repository"
)

// AllocateUsername derives a login handle from a person's name and
// finds the first free variant in the shared namespace. "Juan Pérez"
// becomes juan.perez, then juan.perez1, juan.perez2 and so on until a
// probe misses. Call it inside the unit of work that inserts the
// account; the per-table unique index catches the remaining window.
func AllocateUsername(ctx context.Context, identities repository.IdentityStore, firstName, lastName, disambiguator string) (string, error) {
	base := normalizeHandle(firstName) + "." + normalizeHandle(lastName)
	base = strings.Trim(base, ".")
	if base == "." || base == "" {
		base = "usuario"
	}
	if disambiguator != "" {
		base = base + "." + normalizeHandle(disambiguator)
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := identities.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe username %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}

// normalizeHandle lowercases, strips diacritics and drops anything
// outside [a-z0-9.].
func normalizeHandle(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
