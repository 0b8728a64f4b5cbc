// Package codes generates the public certificate identifiers: "DC" followed
// by eight decimal digits, unique within the active store.
package codes

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// maxAttempts bounds the random sampling loop. The space holds 9e7 values,
// so hitting the bound means either a nearly-full store or a broken RNG;
// the timestamp fallback guarantees termination either way.
const maxAttempts = 25

var codeRe = regexp.MustCompile(`^DC[0-9]{8}$`)

// ExistenceChecker is the single store capability the generator needs.
type ExistenceChecker interface {
	CertificateCodeExists(ctx context.Context, code string) (bool, error)
}

// Generate returns an unused code. A store lookup error propagates to the
// caller; availability concerns belong to the store's fallback tier, not
// here.
func Generate(ctx context.Context, st ExistenceChecker) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code := fmt.Sprintf("DC%08d", 10000000+rand.IntN(90000000))
		exists, err := st.CertificateCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("code collision check: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return fmt.Sprintf("DC%08d", time.Now().UnixNano()%100000000), nil
}

// IsValid reports whether s matches the DC######## pattern.
func IsValid(s string) bool {
	return codeRe.MatchString(s)
}
