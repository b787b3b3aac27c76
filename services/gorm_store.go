package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"syllabus-approval-api/models"
)

// GormStore is the durable SyllabusStore/NotificationStore backed by MySQL.
// Update serializes concurrent mutators on the same syllabus with a
// SELECT ... FOR UPDATE row lock inside a transaction, so a rejected or
// failed mutation rolls back without partial writes.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Create(ctx context.Context, syllabus *models.Syllabus) error {
	return g.db.WithContext(ctx).Create(syllabus).Error
}

func (g *GormStore) Get(ctx context.Context, id string) (*models.Syllabus, error) {
	var syllabus models.Syllabus
	err := g.preloaded(g.db.WithContext(ctx)).
		Where("syllabus_id = ? AND delete_at IS NULL", id).
		First(&syllabus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("syllabus %s not found", id)
		}
		return nil, err
	}
	return &syllabus, nil
}

func (g *GormStore) ListByFaculty(ctx context.Context, facultyID int) ([]models.Syllabus, error) {
	var syllabi []models.Syllabus
	err := g.preloaded(g.db.WithContext(ctx)).
		Where("faculty_id = ? AND delete_at IS NULL", facultyID).
		Order("submitted_at DESC").
		Find(&syllabi).Error
	return syllabi, err
}

func (g *GormStore) ListByCurrentApproverRole(ctx context.Context, roleID int) ([]models.Syllabus, error) {
	var syllabi []models.Syllabus
	err := g.preloaded(g.db.WithContext(ctx)).
		Where("current_approver_role = ? AND delete_at IS NULL", roleID).
		Order("submitted_at ASC").
		Find(&syllabi).Error
	return syllabi, err
}

func (g *GormStore) ListAll(ctx context.Context) ([]models.Syllabus, error) {
	var syllabi []models.Syllabus
	err := g.preloaded(g.db.WithContext(ctx)).
		Where("delete_at IS NULL").
		Order("submitted_at DESC").
		Find(&syllabi).Error
	return syllabi, err
}

func (g *GormStore) Update(ctx context.Context, id string, mutate func(s *models.Syllabus) error) (*models.Syllabus, error) {
	var updated *models.Syllabus
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock first so two approvers racing on the same pending step
		// serialize; relations are loaded after the lock is held.
		var locked models.Syllabus
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("syllabus_id = ? AND delete_at IS NULL", id).
			First(&locked).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("syllabus %s not found", id)
			}
			return err
		}

		var syllabus models.Syllabus
		if err := g.preloaded(tx).
			Where("syllabus_id = ?", id).
			First(&syllabus).Error; err != nil {
			return err
		}

		if err := mutate(&syllabus); err != nil {
			return err
		}
		syllabus.UpdateAt = time.Now()

		if err := tx.Omit("ApprovalSteps", "Comments", "Versions").Save(&syllabus).Error; err != nil {
			return err
		}
		for i := range syllabus.ApprovalSteps {
			if err := tx.Save(&syllabus.ApprovalSteps[i]).Error; err != nil {
				return err
			}
		}
		for i := range syllabus.Versions {
			if err := tx.Save(&syllabus.Versions[i]).Error; err != nil {
				return err
			}
		}
		for i := range syllabus.Comments {
			if syllabus.Comments[i].CommentID == 0 {
				if err := tx.Create(&syllabus.Comments[i]).Error; err != nil {
					return err
				}
			}
		}

		updated = &syllabus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (g *GormStore) preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("ApprovalSteps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("create_at ASC")
		}).
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number ASC")
		})
}

func (g *GormStore) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Create(&notifications).Error
}

func (g *GormStore) ListByUser(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	q := g.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = 0")
	}
	var items []models.Notification
	err := q.Order("create_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

func (g *GormStore) CountUnread(ctx context.Context, userID int) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = 0", userID).
		Count(&n).Error
	return n, err
}

func (g *GormStore) MarkRead(ctx context.Context, notificationID uint, userID int) error {
	res := g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("notification %d not found", notificationID)
	}
	return nil
}

func (g *GormStore) MarkAllRead(ctx context.Context, userID int) error {
	return g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = 0", userID).
		Update("is_read", true).Error
}
