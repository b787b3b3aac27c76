package services

import (
	"context"

	"syllabus-approval-api/models"
)

// SyllabusStore is the persistence contract the workflow engine runs
// against. Update must serialize concurrent mutators per syllabus id;
// a mutator returning an error aborts with no mutation. Reads return
// consistent snapshots that callers may not share with in-flight writers.
type SyllabusStore interface {
	Create(ctx context.Context, syllabus *models.Syllabus) error
	Get(ctx context.Context, id string) (*models.Syllabus, error)
	ListByFaculty(ctx context.Context, facultyID int) ([]models.Syllabus, error)
	ListByCurrentApproverRole(ctx context.Context, roleID int) ([]models.Syllabus, error)
	ListAll(ctx context.Context) ([]models.Syllabus, error)
	Update(ctx context.Context, id string, mutate func(s *models.Syllabus) error) (*models.Syllabus, error)
}

// NotificationStore persists derived notifications. The read flag is the
// only field that mutates after creation, and only for the recipient.
type NotificationStore interface {
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID int) (int64, error)
	MarkRead(ctx context.Context, notificationID uint, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
}

// ApproverDirectory resolves the designated holder of an approver role.
type ApproverDirectory interface {
	DesignatedApprover(roleID int) (*models.User, error)
}
