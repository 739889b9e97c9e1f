package savedsearch

import (
	"encoding/json"
	"fmt"
	"strconv"

	domsaved "github.com/lvpi/lpsearch/internal/domain/savedsearch"
)

// toHash converts a SavedSearch to a map for HSET.
func toHash(s domsaved.SavedSearch) map[string]string {
	return map[string]string{
		"id":          s.ID(),
		"title":       s.Title(),
		"form":        string(s.Form()),
		"subject":     strconv.FormatBool(s.Subject()),
		"created_at":  strconv.FormatInt(s.CreatedAt(), 10),
		"modified_at": strconv.FormatInt(s.ModifiedAt(), 10),
		"revision":    strconv.Itoa(s.Revision()),
	}
}

// fromHash hydrates a SavedSearch from an HGETALL result map.
func fromHash(m map[string]string) (domsaved.SavedSearch, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("invalid created_at: %w", err)
	}

	modifiedAt := createdAt
	if v := m["modified_at"]; v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			modifiedAt = parsed
		}
	}

	revision := 1
	if v := m["revision"]; v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			revision = parsed
		}
	}

	// Older records may lack the flag.
	subject, _ := strconv.ParseBool(m["subject"])

	var form json.RawMessage
	if v := m["form"]; v != "" {
		form = json.RawMessage(v)
	}

	return domsaved.Reconstruct(m["id"], m["title"], form, subject, createdAt, modifiedAt, revision), nil
}
