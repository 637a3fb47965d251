package images

import (
	"context"
	"fmt"
)

// Prune removes stored images that no listing references and returns them.
// With dryRun nothing is removed.
func Prune(ctx context.Context, s Store, referenced map[string]struct{}, dryRun bool) ([]string, error) {
	stored, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var orphans []string
	for _, ref := range stored {
		if _, ok := referenced[ref]; ok {
			continue
		}
		orphans = append(orphans, ref)
		if dryRun {
			continue
		}
		if err := s.Remove(ctx, ref); err != nil {
			return orphans, fmt.Errorf("prune %s: %w", ref, err)
		}
	}
	return orphans, nil
}
