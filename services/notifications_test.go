package services

import (
	"strings"
	"testing"
	"time"

	"syllabus-approval-api/models"
)

func eventSyllabus() models.Syllabus {
	return models.Syllabus{
		SyllabusID:  "syl-1",
		CourseCode:  "CS101",
		FacultyID:   testFacultyID,
		FacultyName: "John Smith",
	}
}

func TestDeriveSubmitNotifiesDeptHead(t *testing.T) {
	event := TransitionEvent{
		Syllabus:   eventSyllabus(),
		OldStatus:  "",
		NewStatus:  models.StatusDeptHeadReview,
		ActingRole: models.RoleFaculty,
		OccurredAt: time.Now(),
	}

	out := DeriveNotifications(event, testDirectory())
	if len(out) != 1 {
		t.Fatalf("notifications = %d, want 1", len(out))
	}
	if out[0].UserID != testDeptHeadID || out[0].Title != "New Syllabus Submission" || out[0].Type != "info" {
		t.Errorf("notification = %+v", out[0])
	}
	if !strings.Contains(out[0].Message, "John Smith") || !strings.Contains(out[0].Message, "CS101") {
		t.Errorf("message = %q", out[0].Message)
	}
}

func TestDeriveIntermediateApproveNotifiesNextReviewerOnly(t *testing.T) {
	s := eventSyllabus()
	deanRole := models.RoleDean
	s.CurrentApproverRole = &deanRole

	event := TransitionEvent{
		Syllabus:   s,
		OldStatus:  models.StatusDeptHeadReview,
		NewStatus:  models.StatusDeanReview,
		ActingRole: models.RoleDeptHead,
		OccurredAt: time.Now(),
	}

	out := DeriveNotifications(event, testDirectory())
	if len(out) != 1 {
		t.Fatalf("notifications = %d, want 1 (no faculty notification at intermediate steps)", len(out))
	}
	if out[0].UserID != testDeanID || out[0].Title != "Syllabus Awaiting Review" {
		t.Errorf("notification = %+v", out[0])
	}
}

func TestDeriveTerminalApproveNotifiesFaculty(t *testing.T) {
	event := TransitionEvent{
		Syllabus:   eventSyllabus(),
		OldStatus:  models.StatusVPAAReview,
		NewStatus:  models.StatusApproved,
		ActingRole: models.RoleVPAA,
		OccurredAt: time.Now(),
	}

	out := DeriveNotifications(event, testDirectory())
	if len(out) != 1 {
		t.Fatalf("notifications = %d, want 1", len(out))
	}
	if out[0].UserID != testFacultyID || out[0].Title != "Syllabus Approved" || out[0].Type != "success" {
		t.Errorf("notification = %+v", out[0])
	}
}

func TestDeriveRevisionTruncatesLongComment(t *testing.T) {
	long := strings.Repeat("x", 400)
	event := TransitionEvent{
		Syllabus:   eventSyllabus(),
		OldStatus:  models.StatusDeanReview,
		NewStatus:  models.StatusRevisionRequired,
		ActingRole: models.RoleDean,
		Comment:    long,
		OccurredAt: time.Now(),
	}

	out := DeriveNotifications(event, testDirectory())
	if len(out) != 1 {
		t.Fatalf("notifications = %d, want 1", len(out))
	}
	if out[0].UserID != testFacultyID || out[0].Type != "error" {
		t.Errorf("notification = %+v", out[0])
	}
	if !strings.Contains(out[0].Message, "Dean") {
		t.Errorf("message missing reviewer role: %q", out[0].Message)
	}
	if strings.Contains(out[0].Message, long) {
		t.Error("comment was not truncated")
	}
	if !strings.Contains(out[0].Message, strings.Repeat("x", revisionCommentLimit)+"...") {
		t.Errorf("truncation marker missing: %q", out[0].Message)
	}
}

func TestDeriveSetsRelatedSyllabusAndUnread(t *testing.T) {
	event := TransitionEvent{
		Syllabus:   eventSyllabus(),
		NewStatus:  models.StatusApproved,
		ActingRole: models.RoleVPAA,
		OccurredAt: time.Now(),
	}

	out := DeriveNotifications(event, testDirectory())
	if len(out) != 1 {
		t.Fatalf("notifications = %d, want 1", len(out))
	}
	if out[0].RelatedSyllabusID == nil || *out[0].RelatedSyllabusID != "syl-1" {
		t.Errorf("related syllabus = %v", out[0].RelatedSyllabusID)
	}
	if out[0].IsRead {
		t.Error("derived notification must start unread")
	}
}
