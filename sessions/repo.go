package sessions

import "time"

// Repo stores sessions by id.
type Repo interface {
	Upsert(session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
	DeleteExpired(now time.Time) int
}
