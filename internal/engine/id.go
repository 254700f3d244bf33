package engine

import "github.com/rs/xid"

// generateID creates a sortable unique ID for dishes.
func generateID() string {
	return xid.New().String()
}
