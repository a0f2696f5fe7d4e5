package credentials

import (
	"errors"

	"github.com/waylink/go-deeplink/pkg/domain"
)

// KeyName is the logical name the SDK stores its API key under.
const KeyName = "api_key"

// KeyReference builds the reference an API key is stored under. The
// environment comes from the key itself, so a malformed key yields a
// reference Put will reject.
func KeyReference(apiKey string) Reference {
	return Reference{Environment: domain.KeyEnvironment(apiKey), Name: KeyName}
}

// LatestKey returns the most recently stored API key across environments.
// Versions are RFC3339Nano timestamps, so lexical order is chronological.
func LatestKey(p Provider) (Value, error) {
	var best Value
	var found bool
	for _, env := range []string{"live", "test"} {
		val, err := p.Get(Reference{Environment: env, Name: KeyName})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return Value{}, err
		}
		if !found || val.Version > best.Version {
			best = val
			found = true
		}
	}
	if !found {
		return Value{}, ErrNotFound
	}
	return best, nil
}
