package engine

import (
	"context"
	"sort"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

// AutoConfigureResult is the outcome of an auto-configuration pass.
type AutoConfigureResult struct {
	Success bool `json:"success"`
	// Selected maps each slice to the profile chosen for it.
	Selected map[string]string `json:"selected"`
	// Skipped lists use-case ids that are not in the catalog.
	Skipped []string                `json:"skipped,omitempty"`
	Applied map[string]*ApplyResult `json:"applied"`
	Message string                  `json:"message"`
}

// AutoConfigure derives per-slice profiles from the active use cases and
// applies them.
//
// When several use cases land on the same slice, the profile with the best
// (lowest) priority wins; on an exact priority tie the candidate seen first
// in the input keeps the slice. Unknown use-case ids are skipped and
// reported, not fatal: a stale dashboard toggle must not block the
// configuration of the rest of the testbed.
func (e *Engine) AutoConfigure(ctx context.Context, useCaseIDs []string) *AutoConfigureResult {
	result := &AutoConfigureResult{
		Selected: make(map[string]string),
		Applied:  make(map[string]*ApplyResult),
	}

	for _, ucID := range useCaseIDs {
		uc, err := e.catalog.UseCase(ucID)
		if err != nil {
			log.Warnf("Auto-configure: %v", err)
			result.Skipped = append(result.Skipped, ucID)
			continue
		}

		profile, err := e.catalog.Profile(uc.Profile)
		if err != nil {
			log.Warnf("Auto-configure: use case %s: %v", ucID, err)
			result.Skipped = append(result.Skipped, ucID)
			continue
		}

		current, ok := result.Selected[uc.Slice]
		if !ok {
			result.Selected[uc.Slice] = profile.ProfileID
			continue
		}

		existing, err := e.catalog.Profile(current)
		if err != nil {
			result.Selected[uc.Slice] = profile.ProfileID
			continue
		}

		if profile.Priority < existing.Priority {
			result.Selected[uc.Slice] = profile.ProfileID
		}
	}

	sliceIDs := make([]string, 0, len(result.Selected))
	for sliceID := range result.Selected {
		sliceIDs = append(sliceIDs, sliceID)
	}
	sort.Strings(sliceIDs)

	result.Success = true
	for _, sliceID := range sliceIDs {
		applied, err := e.Apply(ctx, sliceID, result.Selected[sliceID], nil)
		if err != nil {
			result.Success = false
			log.Warnf("Auto-configure: applying %s to %s: %v", result.Selected[sliceID], sliceID, err)
		}
		if applied != nil {
			result.Applied[sliceID] = applied
		}
	}

	if result.Success {
		result.Message = "Auto-configured QoS"
	} else {
		result.Message = "Auto-configuration partially failed"
	}
	return result
}
