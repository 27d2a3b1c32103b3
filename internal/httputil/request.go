package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const maxJSONBody = 10 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// The body is capped; properties maps accept arbitrary fields, so unknown
// fields are not rejected here.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseIDList reads a comma separated id list from one or more values of a
// query or form parameter. Blank entries are dropped and order is kept.
func ParseIDList(values []string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			id := strings.TrimSpace(part)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
