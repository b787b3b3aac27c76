package services

import (
	"fmt"
	"time"

	"syllabus-approval-api/models"
)

// TransitionEvent describes one applied workflow transition. It carries a
// snapshot of the syllabus after the transition.
type TransitionEvent struct {
	Syllabus   models.Syllabus
	OldStatus  string
	NewStatus  string
	ActingRole int
	ActorName  string
	Comment    string
	OccurredAt time.Time
}

// Mailer delivers a notification out of band (email). Implementations must
// not block workflow transitions; failures are logged, never surfaced.
type Mailer interface {
	Send(userID int, title, message string)
}

const revisionCommentLimit = 200

// DeriveNotifications computes the notifications a transition produces.
// Pure: the same event yields the same set, timestamps taken from the event.
func DeriveNotifications(event TransitionEvent, directory ApproverDirectory) []models.Notification {
	s := event.Syllabus
	out := make([]models.Notification, 0, 1)

	notify := func(userID int, title, message, kind string) {
		id := s.SyllabusID
		out = append(out, models.Notification{
			UserID:            userID,
			Title:             title,
			Message:           message,
			Type:              kind,
			RelatedSyllabusID: &id,
			IsRead:            false,
			CreateAt:          event.OccurredAt,
		})
	}

	switch event.NewStatus {
	case models.StatusDeptHeadReview:
		if head, err := directory.DesignatedApprover(models.RoleDeptHead); err == nil {
			if event.OldStatus == "" || event.OldStatus == models.StatusRevisionRequired {
				notify(head.UserID, "New Syllabus Submission",
					fmt.Sprintf("%s has submitted a syllabus for %s for your review.", s.FacultyName, s.CourseCode),
					"info")
			} else {
				notify(head.UserID, "Syllabus Awaiting Review",
					fmt.Sprintf("%s syllabus is awaiting your approval.", s.CourseCode),
					"info")
			}
		}
	case models.StatusDeanReview, models.StatusCITLReview, models.StatusVPAAReview:
		if s.CurrentApproverRole != nil {
			if next, err := directory.DesignatedApprover(*s.CurrentApproverRole); err == nil {
				notify(next.UserID, "Syllabus Awaiting Review",
					fmt.Sprintf("%s syllabus is awaiting your approval.", s.CourseCode),
					"info")
			}
		}
	case models.StatusApproved:
		notify(s.FacultyID, "Syllabus Approved",
			fmt.Sprintf("Your syllabus for %s has been fully approved.", s.CourseCode),
			"success")
	case models.StatusRevisionRequired:
		comment := event.Comment
		if runes := []rune(comment); len(runes) > revisionCommentLimit {
			comment = string(runes[:revisionCommentLimit]) + "..."
		}
		notify(s.FacultyID, "Revision Required",
			fmt.Sprintf("Your syllabus for %s requires revision. %s has requested changes: %s",
				s.CourseCode, models.RoleLabel(event.ActingRole), comment),
			"error")
	}

	return out
}
