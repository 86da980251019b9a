package health

import (
	"context"
	"sort"
)

// TrackFolder registers path under CategoryFolders. It is checked by
// CheckFolders.
func (s *Service) TrackFolder(id, name, path string) {
	s.RegisterItem(CategoryFolders, id, name)

	s.mu.Lock()
	s.folders[id] = path
	s.mu.Unlock()
}

// CheckFolders checks every tracked folder and updates its status.
func (s *Service) CheckFolders(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.folders))
	for id := range s.folders {
		ids = append(ids, id)
	}
	paths := make(map[string]string, len(s.folders))
	for id, path := range s.folders {
		paths[id] = path
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch status, message := s.checker.CheckFolderHealth(paths[id]); status {
		case StatusOK:
			s.ClearStatus(CategoryFolders, id)
		case StatusWarning:
			s.SetWarning(CategoryFolders, id, message)
		default:
			s.SetError(CategoryFolders, id, message)
		}
	}
	return nil
}
