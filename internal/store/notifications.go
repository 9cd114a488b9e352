package store

import (
	"sort"

	"github.com/iho/pocketbank/internal/domain"
)

// Notifications returns notifications sorted newest first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Notification, len(s.state.Notifications))
	copy(out, s.state.Notifications)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// AddNotification records a manual in-app notification and returns its
// id.
func (s *Store) AddNotification(title, message string, severity domain.Severity) (string, error) {
	id := s.idGen.Generate()
	err := s.mutate("add_notification", func(st *domain.AppState) error {
		st.Notifications = append(st.Notifications, domain.Notification{
			ID:        id,
			Title:     title,
			Message:   message,
			Severity:  severity,
			Timestamp: s.now(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// MarkRead flags the notification with the given id as read.
func (s *Store) MarkRead(id string) error {
	return s.mutate("mark_read", func(st *domain.AppState) error {
		for i := range st.Notifications {
			if st.Notifications[i].ID == id {
				st.Notifications[i].Read = true
				return nil
			}
		}
		return domain.ErrNotificationNotFound
	})
}

// UnreadCount reports how many notifications are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.state.Notifications {
		if !s.state.Notifications[i].Read {
			count++
		}
	}
	return count
}
