package totp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
)

// RecoveryCodeCount is the size of a freshly issued recovery code set.
const RecoveryCodeCount = 10

// RecoveryCodes pairs the raw single-use codes, shown to the user exactly
// once, with their hashed forms, which are the only versions ever persisted.
// Raw[i] always corresponds to Hashed[i].
type RecoveryCodes struct {
	Raw    []string
	Hashed []string
}

// GenerateRecoveryCodes creates count single-use recovery codes. Each raw
// code is 8 random bytes rendered as 16 uppercase hex characters. Hashing is
// delegated to the caller's password-hashing primitive and runs concurrently
// since each code hashes independently; index correlation is preserved.
func GenerateRecoveryCodes(count int, hash func(string) (string, error)) (RecoveryCodes, error) {
	if count < 1 {
		count = RecoveryCodeCount
	}
	if hash == nil {
		return RecoveryCodes{}, ErrMissingHasher
	}

	codes := RecoveryCodes{
		Raw:    make([]string, count),
		Hashed: make([]string, count),
	}
	for i := 0; i < count; i++ {
		raw := make([]byte, 8)
		if _, err := rand.Read(raw); err != nil {
			return RecoveryCodes{}, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		codes.Raw[i] = fmt.Sprintf("%X", raw)
	}

	var wg sync.WaitGroup
	errs := make([]error, count)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes.Hashed[i], errs[i] = hash(codes.Raw[i])
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return RecoveryCodes{}, err
	}
	return codes, nil
}
