package services

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"syllabus-approval-api/models"
)

var approverTTL = 5 * time.Minute

// GormApproverDirectory resolves the current designated holder of each
// approver role from the users table, with a short-lived cache so queue
// listings and submissions do not hit the database on every request.
type GormApproverDirectory struct {
	db *gorm.DB

	mu        sync.RWMutex
	cache     map[int]models.User
	fetchedAt time.Time
}

func NewGormApproverDirectory(db *gorm.DB) *GormApproverDirectory {
	return &GormApproverDirectory{db: db}
}

func (d *GormApproverDirectory) DesignatedApprover(roleID int) (*models.User, error) {
	d.mu.RLock()
	if d.cache != nil && time.Since(d.fetchedAt) < approverTTL {
		if u, ok := d.cache[roleID]; ok {
			d.mu.RUnlock()
			return &u, nil
		}
	}
	d.mu.RUnlock()

	if err := d.refresh(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if u, ok := d.cache[roleID]; ok {
		return &u, nil
	}
	return nil, notFoundf("no designated approver for role %s", models.RoleLabel(roleID))
}

func (d *GormApproverDirectory) refresh() error {
	var users []models.User
	if err := d.db.
		Where("role_id IN ? AND is_active = 1 AND delete_at IS NULL", models.ApproverChain).
		Order("user_id ASC").
		Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load approvers: %w", err)
	}

	cache := make(map[int]models.User, len(models.ApproverChain))
	for _, u := range users {
		// First active user per role wins; holders are expected to be unique.
		if _, ok := cache[u.RoleID]; !ok {
			cache[u.RoleID] = u
		}
	}

	d.mu.Lock()
	d.cache = cache
	d.fetchedAt = time.Now()
	d.mu.Unlock()
	return nil
}

// ClearApproverCache invalidates the directory cache, used after admin user
// changes so a new designated approver takes effect immediately.
func (d *GormApproverDirectory) ClearApproverCache() {
	d.mu.Lock()
	d.cache = nil
	d.mu.Unlock()
}
