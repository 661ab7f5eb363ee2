package render

import (
	"bytes"

	"github.com/matzehuels/waterfall/pkg/snapshot"
)

// RenderJSON encodes the snapshot as indented JSON.
func RenderJSON(s *snapshot.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := snapshot.WriteJSON(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
