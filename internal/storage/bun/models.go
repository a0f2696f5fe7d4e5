package bunrepo

import "github.com/waylink/go-deeplink/pkg/domain"

// Models returns the bun models this package persists, in table creation
// order, for schema setup and migration registration.
func Models() []any {
	return []any{
		(*domain.LinkActivity)(nil),
		(*credentialRecord)(nil),
	}
}
