package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"syllabus-approval-api/models"
)

// MemoryStore is an in-process SyllabusStore and NotificationStore used by
// tests and local runs without a database. Each syllabus id owns a mutex so
// concurrent Update calls on the same record serialize while different ids
// proceed in parallel.
type MemoryStore struct {
	mu            sync.RWMutex
	syllabi       map[string]*models.Syllabus
	recordLocks   map[string]*sync.Mutex
	notifications []models.Notification
	nextNotifID   uint
	nextStepID    int
	nextVersionID int
	nextCommentID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		syllabi:     make(map[string]*models.Syllabus),
		recordLocks: make(map[string]*sync.Mutex),
		nextNotifID: 1,
	}
}

func (m *MemoryStore) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.recordLocks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	m.recordLocks[id] = l
	return l
}

func (m *MemoryStore) assignIDs(s *models.Syllabus) {
	for i := range s.ApprovalSteps {
		if s.ApprovalSteps[i].StepID == 0 {
			m.nextStepID++
			s.ApprovalSteps[i].StepID = m.nextStepID
		}
	}
	for i := range s.Versions {
		if s.Versions[i].VersionID == 0 {
			m.nextVersionID++
			s.Versions[i].VersionID = m.nextVersionID
		}
	}
	for i := range s.Comments {
		if s.Comments[i].CommentID == 0 {
			m.nextCommentID++
			s.Comments[i].CommentID = m.nextCommentID
		}
	}
}

func (m *MemoryStore) Create(ctx context.Context, syllabus *models.Syllabus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.syllabi[syllabus.SyllabusID]; exists {
		return &WorkflowError{Kind: ErrConflict, Message: "syllabus already exists"}
	}
	m.assignIDs(syllabus)
	m.syllabi[syllabus.SyllabusID] = copySyllabus(syllabus)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Syllabus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.syllabi[id]
	if !ok {
		return nil, notFoundf("syllabus %s not found", id)
	}
	return copySyllabus(s), nil
}

func (m *MemoryStore) ListByFaculty(ctx context.Context, facultyID int) ([]models.Syllabus, error) {
	return m.list(func(s *models.Syllabus) bool {
		return s.FacultyID == facultyID
	})
}

func (m *MemoryStore) ListByCurrentApproverRole(ctx context.Context, roleID int) ([]models.Syllabus, error) {
	return m.list(func(s *models.Syllabus) bool {
		return s.CurrentApproverRole != nil && *s.CurrentApproverRole == roleID
	})
}

func (m *MemoryStore) ListAll(ctx context.Context) ([]models.Syllabus, error) {
	return m.list(func(s *models.Syllabus) bool { return true })
}

func (m *MemoryStore) list(match func(*models.Syllabus) bool) ([]models.Syllabus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Syllabus, 0)
	for _, s := range m.syllabi {
		if match(s) {
			out = append(out, *copySyllabus(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SyllabusID < out[j].SyllabusID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, mutate func(s *models.Syllabus) error) (*models.Syllabus, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	stored, ok := m.syllabi[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFoundf("syllabus %s not found", id)
	}

	// Mutate a copy so a failed mutator leaves the record untouched.
	working := copySyllabus(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.UpdateAt = time.Now()

	m.mu.Lock()
	m.assignIDs(working)
	m.syllabi[id] = working
	m.mu.Unlock()

	return copySyllabus(working), nil
}

func (m *MemoryStore) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range notifications {
		n.NotificationID = m.nextNotifID
		m.nextNotifID++
		m.notifications = append(m.notifications, n)
	}
	return nil
}

func (m *MemoryStore) ListByUser(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := make([]models.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreateAt.Equal(matched[j].CreateAt) {
			return matched[i].NotificationID > matched[j].NotificationID
		}
		return matched[i].CreateAt.After(matched[j].CreateAt)
	})
	if offset >= len(matched) {
		return []models.Notification{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryStore) CountUnread(ctx context.Context, userID int) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, notif := range m.notifications {
		if notif.UserID == userID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) MarkRead(ctx context.Context, notificationID uint, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].NotificationID == notificationID && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
			now := time.Now()
			m.notifications[i].UpdateAt = &now
			return nil
		}
	}
	return notFoundf("notification %d not found", notificationID)
}

func (m *MemoryStore) MarkAllRead(ctx context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && !m.notifications[i].IsRead {
			m.notifications[i].IsRead = true
			m.notifications[i].UpdateAt = &now
		}
	}
	return nil
}

func copySyllabus(s *models.Syllabus) *models.Syllabus {
	out := *s
	if s.CurrentApproverID != nil {
		v := *s.CurrentApproverID
		out.CurrentApproverID = &v
	}
	if s.CurrentApproverRole != nil {
		v := *s.CurrentApproverRole
		out.CurrentApproverRole = &v
	}
	out.ApprovalSteps = make([]models.ApprovalStep, len(s.ApprovalSteps))
	copy(out.ApprovalSteps, s.ApprovalSteps)
	out.Comments = make([]models.SyllabusComment, len(s.Comments))
	copy(out.Comments, s.Comments)
	out.Versions = make([]models.SyllabusVersion, len(s.Versions))
	copy(out.Versions, s.Versions)
	return &out
}

// StaticApproverDirectory resolves designated approvers from a fixed map.
// Used by tests and local runs without a database.
type StaticApproverDirectory struct {
	Approvers map[int]models.User
}

func (d *StaticApproverDirectory) DesignatedApprover(roleID int) (*models.User, error) {
	u, ok := d.Approvers[roleID]
	if !ok {
		return nil, notFoundf("no designated approver for role %s", models.RoleLabel(roleID))
	}
	return &u, nil
}
