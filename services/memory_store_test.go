package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"syllabus-approval-api/models"
)

func seedSyllabus(t *testing.T, store *MemoryStore, id string) {
	t.Helper()
	role := models.RoleDeptHead
	approver := testDeptHeadID
	err := store.Create(context.Background(), &models.Syllabus{
		SyllabusID:          id,
		CourseCode:          "CS101",
		FacultyID:           testFacultyID,
		Status:              models.StatusDeptHeadReview,
		CurrentApproverID:   &approver,
		CurrentApproverRole: &role,
		SubmittedAt:         time.Now(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestMemoryStoreGetUnknownNotFound(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
	if _, err := store.Update(context.Background(), "missing", func(s *models.Syllabus) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("update err = %v, want NotFound", err)
	}
}

func TestMemoryStoreCreateDuplicateConflict(t *testing.T) {
	store := NewMemoryStore()
	seedSyllabus(t, store, "syl-1")
	err := store.Create(context.Background(), &models.Syllabus{SyllabusID: "syl-1"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want Conflict", err)
	}
}

func TestMemoryStoreFailedMutatorLeavesRecordUnchanged(t *testing.T) {
	store := NewMemoryStore()
	seedSyllabus(t, store, "syl-1")

	boom := errors.New("boom")
	_, err := store.Update(context.Background(), "syl-1", func(s *models.Syllabus) error {
		s.Status = models.StatusApproved
		s.Comments = append(s.Comments, models.SyllabusComment{Text: "partial"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	after, _ := store.Get(context.Background(), "syl-1")
	if after.Status != models.StatusDeptHeadReview || len(after.Comments) != 0 {
		t.Errorf("record mutated by failed mutator: %+v", after)
	}
}

func TestMemoryStoreGetReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	seedSyllabus(t, store, "syl-1")

	snapshot, _ := store.Get(context.Background(), "syl-1")
	snapshot.Status = models.StatusApproved
	snapshot.Comments = append(snapshot.Comments, models.SyllabusComment{Text: "local"})

	fresh, _ := store.Get(context.Background(), "syl-1")
	if fresh.Status != models.StatusDeptHeadReview || len(fresh.Comments) != 0 {
		t.Error("mutating a returned snapshot leaked into the store")
	}
}

func TestMemoryStoreUpdateSerializesPerRecord(t *testing.T) {
	store := NewMemoryStore()
	seedSyllabus(t, store, "syl-1")

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := store.Update(context.Background(), "syl-1", func(s *models.Syllabus) error {
				s.Comments = append(s.Comments, models.SyllabusComment{Text: fmt.Sprintf("c%d", n)})
				return nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	after, _ := store.Get(context.Background(), "syl-1")
	if len(after.Comments) != writers {
		t.Errorf("comments = %d, want %d (lost update)", len(after.Comments), writers)
	}
}

func TestMemoryStoreOnlyOneApproverWinsRace(t *testing.T) {
	store := NewMemoryStore()
	engine := NewWorkflowEngine(store, store, testDirectory())
	s := submitCS101(t, engine)

	// Two dept head decisions racing on the same pending step: exactly one
	// may transition it.
	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = engine.Approve(context.Background(), s.SyllabusID, models.RoleDeptHead, testDeptHeadID, "sig-a", "")
	}()
	go func() {
		defer wg.Done()
		_, results[1] = engine.RequestRevision(context.Background(), s.SyllabusID, models.RoleDeptHead, testDeptHeadID, "needs work")
	}()
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			failures++
			if !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrInvalidState) {
				t.Errorf("loser got %v, want Unauthorized or InvalidState", err)
			}
		}
	}
	if failures != 1 {
		t.Errorf("failed actions = %d, want exactly 1", failures)
	}
}

func TestMemoryStoreNotificationReadFlow(t *testing.T) {
	store := NewMemoryStore()
	id := "syl-1"
	err := store.CreateNotifications(context.Background(), []models.Notification{
		{UserID: 1, Title: "A", RelatedSyllabusID: &id, CreateAt: time.Now()},
		{UserID: 1, Title: "B", CreateAt: time.Now()},
		{UserID: 2, Title: "C", CreateAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("CreateNotifications failed: %v", err)
	}

	n, _ := store.CountUnread(context.Background(), 1)
	if n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}

	items, _ := store.ListByUser(context.Background(), 1, false, 10, 0)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	// Recipient mismatch must not flip the flag.
	if err := store.MarkRead(context.Background(), items[0].NotificationID, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user MarkRead err = %v, want NotFound", err)
	}

	if err := store.MarkRead(context.Background(), items[0].NotificationID, 1); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	n, _ = store.CountUnread(context.Background(), 1)
	if n != 1 {
		t.Errorf("unread after MarkRead = %d, want 1", n)
	}

	if err := store.MarkAllRead(context.Background(), 1); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	n, _ = store.CountUnread(context.Background(), 1)
	if n != 0 {
		t.Errorf("unread after MarkAllRead = %d, want 0", n)
	}

	unread, _ := store.ListByUser(context.Background(), 2, true, 10, 0)
	if len(unread) != 1 || unread[0].Title != "C" {
		t.Errorf("other user's notifications affected: %+v", unread)
	}
}
