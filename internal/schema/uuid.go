package schema

import "github.com/google/uuid"

// parseUUIDOrZero parses s as a UUID, treating an empty string as the nil
// UUID (a fresh position the host hasn't assigned an ID to yet).
func parseUUIDOrZero(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.UUID{}, nil
	}
	return uuid.Parse(s)
}
