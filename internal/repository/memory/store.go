// Package memory provides in-memory implementations of the repository
// interfaces. They back the terminal chat command and the package tests,
// where spinning up Postgres would be overkill. All repositories returned by
// a Store share one dataset and one lock, so cross-entity operations such as
// tree deletion stay consistent.
package memory

import (
	"sync"

	"famtreebot/internal/models"
	"famtreebot/internal/repository"
)

// Store holds the shared in-memory dataset.
type Store struct {
	mu sync.RWMutex

	users         map[int64]*models.User
	trees         map[int64]*models.Tree
	grants        map[int64]*models.AccessGrant
	members       map[int64]*models.Member
	relationships map[int64]*models.Relationship
	events        map[int64]*models.Event

	nextUserID         int64
	nextTreeID         int64
	nextGrantID        int64
	nextMemberID       int64
	nextRelationshipID int64
	nextEventID        int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:         make(map[int64]*models.User),
		trees:         make(map[int64]*models.Tree),
		grants:        make(map[int64]*models.AccessGrant),
		members:       make(map[int64]*models.Member),
		relationships: make(map[int64]*models.Relationship),
		events:        make(map[int64]*models.Event),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository {
	return &userRepository{s: s}
}

// Trees returns the tree repository view of the store.
func (s *Store) Trees() repository.TreeRepository {
	return &treeRepository{s: s}
}

// Members returns the member repository view of the store.
func (s *Store) Members() repository.MemberRepository {
	return &memberRepository{s: s}
}

// Events returns the event repository view of the store.
func (s *Store) Events() repository.EventRepository {
	return &eventRepository{s: s}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyTree(t *models.Tree) *models.Tree {
	c := *t
	return &c
}

func copyGrant(g *models.AccessGrant) *models.AccessGrant {
	c := *g
	return &c
}

func copyMember(m *models.Member) *models.Member {
	c := *m
	if m.DOB != nil {
		dob := *m.DOB
		c.DOB = &dob
	}
	if m.LockedBy != nil {
		lockedBy := *m.LockedBy
		c.LockedBy = &lockedBy
	}
	return &c
}

func copyRelationship(r *models.Relationship) *models.Relationship {
	c := *r
	return &c
}

func copyEvent(e *models.Event) *models.Event {
	c := *e
	return &c
}
