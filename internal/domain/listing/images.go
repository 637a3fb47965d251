package listing

import (
	"encoding/json"
	"slices"
	"strings"
)

// ImageChanges is the image half of an update request.
type ImageChanges struct {
	// Existing is Unset when existingImages was absent, blank or not JSON.
	Existing Optional[[]string]
	// Delete lists refs the client asked to remove; a malformed value is empty.
	Delete []string
}

func (p Patch) ImageChanges() ImageChanges {
	var c ImageChanges
	if raw, ok := p.values["existingImages"]; ok {
		c.Existing = parseExistingImages(raw)
	}
	if raw, ok := p.values["imagesToDelete"]; ok {
		if list, err := ParseList(raw); err == nil {
			c.Delete = list
		}
	}
	return c
}

// parseExistingImages treats valid JSON that is not a string array as an
// empty list, so it falls under the empty-list guard in BaseSet.
func parseExistingImages(raw string) Optional[[]string] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unset[[]string]()
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		if list == nil {
			list = []string{}
		}
		return Some(list)
	}
	if json.Valid([]byte(s)) {
		return Some([]string{})
	}
	return Unset[[]string]()
}

// BaseSet picks the image list new uploads are appended to.
//
// An empty existingImages only clears the images when the client also named
// images to delete; otherwise the current images are kept.
func (c ImageChanges) BaseSet(current []string) []string {
	existing, ok := c.Existing.Get()
	switch {
	case !ok:
		return cloneList(current)
	case len(existing) > 0:
		return cloneList(existing)
	case len(c.Delete) > 0:
		return []string{}
	default:
		return cloneList(current)
	}
}

func cloneList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return slices.Clone(list)
}
