package services

import (
	"fmt"

	"github.com/yukikurage/scrumboard-api/internal/models"
	"github.com/yukikurage/scrumboard-api/internal/repository"
)

// assignNumber hands out the next number for scope. It must run inside the
// transaction that persists the new entity. A fresh counter starts from the
// highest number already stored in the scope, so existing data keeps counting
// up from where it is.
func assignNumber(tx *repository.Repositories, scope models.SequenceScope, scopeID uint64) (int, error) {
	var (
		floor int
		err   error
	)
	switch scope {
	case models.ScopeSprint:
		floor, err = tx.Sprints.MaxNumber(scopeID)
	case models.ScopeUserStory:
		floor, err = tx.UserStories.MaxNumber(scopeID)
	case models.ScopeTask:
		floor, err = tx.Tasks.MaxNumber(scopeID)
	default:
		return 0, fmt.Errorf("unknown sequence scope %q", scope)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read current %s number: %w", scope, err)
	}

	n, err := tx.Sequences.Next(scope, scopeID, floor)
	if err != nil {
		return 0, fmt.Errorf("failed to assign %s number: %w", scope, err)
	}
	return n, nil
}
