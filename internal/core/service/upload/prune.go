package upload

import (
	"time"
)

// Prune forgets completed and cancelled jobs that finished before the cutoff
func (s *uploadService) Prune(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, j := range s.jobs {
		j.mu.Lock()
		if j.stage.IsTerminal() && j.finishedAt != nil && j.finishedAt.Before(before) {
			j.closeWatchersLocked()
			delete(s.jobs, id)
			pruned++
		}
		j.mu.Unlock()
	}
	return pruned
}
