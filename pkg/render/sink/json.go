package sink

import "github.com/matzehuels/tagcloud/pkg/document"

// RenderJSON exports the layout as pretty-printed JSON.
func RenderJSON(l document.Layout) ([]byte, error) {
	return document.MarshalLayout(l)
}
