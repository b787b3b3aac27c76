package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"syllabus-approval-api/models"
)

// WorkflowEngine applies actor decisions to syllabi: it validates an action
// against current state and actor role, mutates the record atomically,
// appends to the approval ledger, and derives notifications from the
// resulting transition. Rejected actions never mutate state.
type WorkflowEngine struct {
	store         SyllabusStore
	notifications NotificationStore
	directory     ApproverDirectory
	mailer        Mailer

	now   func() time.Time
	newID func() string
}

func NewWorkflowEngine(store SyllabusStore, notifications NotificationStore, directory ApproverDirectory) *WorkflowEngine {
	return &WorkflowEngine{
		store:         store,
		notifications: notifications,
		directory:     directory,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// SetMailer attaches an out-of-band delivery channel for derived
// notifications. Nil (the default) disables email.
func (e *WorkflowEngine) SetMailer(m Mailer) {
	e.mailer = m
}

// SetClock overrides the engine clock, used by tests.
func (e *WorkflowEngine) SetClock(now func() time.Time) {
	e.now = now
}

// SubmitInput carries everything a faculty submission needs. SyllabusID is
// empty for a first submission and set when resubmitting after a revision
// request.
type SubmitInput struct {
	SyllabusID   string
	FacultyID    int
	FacultyName  string
	CourseCode   string
	CourseTitle  string
	Semester     string
	Department   string
	FileID       int
	FileName     string
	SignatureRef string
}

func (in SubmitInput) validate() error {
	missing := make([]string, 0, 4)
	if in.SyllabusID == "" {
		if strings.TrimSpace(in.CourseCode) == "" {
			missing = append(missing, "course_code")
		}
		if strings.TrimSpace(in.CourseTitle) == "" {
			missing = append(missing, "course_title")
		}
		if strings.TrimSpace(in.Semester) == "" {
			missing = append(missing, "semester")
		}
		if strings.TrimSpace(in.Department) == "" {
			missing = append(missing, "department")
		}
	}
	if in.FileID == 0 || strings.TrimSpace(in.FileName) == "" {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Submit creates a syllabus from a faculty upload, or appends a new version
// when the syllabus is awaiting revision. The review chain always (re)starts
// at the Department Head.
func (e *WorkflowEngine) Submit(ctx context.Context, actorRole int, in SubmitInput) (*models.Syllabus, error) {
	if !models.RoleHasCapability(actorRole, models.CapabilitySubmit) {
		return nil, unauthorizedf("role %s may not submit syllabi", models.RoleLabel(actorRole))
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.SyllabusID != "" {
		return e.resubmit(ctx, in)
	}
	return e.submitNew(ctx, in)
}

func (e *WorkflowEngine) submitNew(ctx context.Context, in SubmitInput) (*models.Syllabus, error) {
	if strings.TrimSpace(in.SignatureRef) == "" {
		return nil, validationf("signature is required on submission")
	}

	head, err := e.directory.DesignatedApprover(models.RoleDeptHead)
	if err != nil {
		return nil, err
	}

	now := e.now()
	headID := head.UserID
	headRole := models.RoleDeptHead
	syllabus := &models.Syllabus{
		SyllabusID:          e.newID(),
		CourseCode:          strings.TrimSpace(in.CourseCode),
		CourseTitle:         strings.TrimSpace(in.CourseTitle),
		Semester:            strings.TrimSpace(in.Semester),
		Department:          strings.TrimSpace(in.Department),
		FacultyID:           in.FacultyID,
		FacultyName:         in.FacultyName,
		Status:              models.StatusDeptHeadReview,
		CurrentApproverID:   &headID,
		CurrentApproverRole: &headRole,
		SubmittedAt:         now,
		CreateAt:            now,
		UpdateAt:            now,
	}

	// Originating faculty step, pre-approved with the faculty signature.
	decisionAt := now
	syllabus.ApprovalSteps = append(syllabus.ApprovalSteps, models.ApprovalStep{
		SyllabusID:   syllabus.SyllabusID,
		StepOrder:    0,
		RoleID:       models.RoleFaculty,
		ApproverID:   in.FacultyID,
		ApproverName: in.FacultyName,
		Decision:     models.DecisionApproved,
		DecisionAt:   &decisionAt,
		SignatureRef: in.SignatureRef,
	})
	for i, roleID := range models.ApproverChain {
		approver, err := e.directory.DesignatedApprover(roleID)
		if err != nil {
			return nil, err
		}
		syllabus.ApprovalSteps = append(syllabus.ApprovalSteps, models.ApprovalStep{
			SyllabusID:   syllabus.SyllabusID,
			StepOrder:    i + 1,
			RoleID:       roleID,
			ApproverID:   approver.UserID,
			ApproverName: approver.FullName(),
			Decision:     models.DecisionPending,
		})
	}

	syllabus.Versions = append(syllabus.Versions, models.SyllabusVersion{
		SyllabusID:    syllabus.SyllabusID,
		VersionNumber: 1,
		FileID:        in.FileID,
		FileName:      in.FileName,
		UploadedAt:    now,
		Outcome:       models.VersionCurrent,
	})

	if err := e.store.Create(ctx, syllabus); err != nil {
		return nil, err
	}

	e.emit(ctx, TransitionEvent{
		Syllabus:   *syllabus,
		OldStatus:  "",
		NewStatus:  models.StatusDeptHeadReview,
		ActingRole: models.RoleFaculty,
		ActorName:  in.FacultyName,
		OccurredAt: now,
	})
	return syllabus, nil
}

func (e *WorkflowEngine) resubmit(ctx context.Context, in SubmitInput) (*models.Syllabus, error) {
	now := e.now()
	updated, err := e.store.Update(ctx, in.SyllabusID, func(s *models.Syllabus) error {
		if s.Status != models.StatusRevisionRequired {
			return invalidStatef("syllabus is not awaiting revision")
		}
		if s.FacultyID != in.FacultyID {
			return unauthorizedf("only the submitting faculty may resubmit")
		}

		s.Versions = append(s.Versions, models.SyllabusVersion{
			SyllabusID:    s.SyllabusID,
			VersionNumber: len(s.Versions) + 1,
			FileID:        in.FileID,
			FileName:      in.FileName,
			UploadedAt:    now,
			Outcome:       models.VersionCurrent,
		})

		// All approver steps re-review the revised document.
		for i := range s.ApprovalSteps {
			if s.ApprovalSteps[i].RoleID == models.RoleFaculty {
				continue
			}
			s.ApprovalSteps[i].Decision = models.DecisionPending
			s.ApprovalSteps[i].DecisionAt = nil
			s.ApprovalSteps[i].SignatureRef = ""
			s.ApprovalSteps[i].Comment = ""
		}

		head := s.StepForRole(models.RoleDeptHead)
		s.Status = models.StatusDeptHeadReview
		headRole := models.RoleDeptHead
		s.CurrentApproverRole = &headRole
		if head != nil {
			approverID := head.ApproverID
			s.CurrentApproverID = &approverID
		}
		s.SubmittedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, TransitionEvent{
		Syllabus:   *updated,
		OldStatus:  models.StatusRevisionRequired,
		NewStatus:  models.StatusDeptHeadReview,
		ActingRole: models.RoleFaculty,
		ActorName:  updated.FacultyName,
		OccurredAt: now,
	})
	return updated, nil
}

// Approve records an approver decision and advances the chain, reaching the
// approved terminal state when the VPAA signs off.
func (e *WorkflowEngine) Approve(ctx context.Context, syllabusID string, actingRole, actorID int, signatureRef, comment string) (*models.Syllabus, error) {
	if !models.RoleHasCapability(actingRole, models.CapabilityApprove) {
		return nil, unauthorizedf("role %s may not approve syllabi", models.RoleLabel(actingRole))
	}
	if strings.TrimSpace(signatureRef) == "" {
		return nil, validationf("signature is required to approve")
	}

	now := e.now()
	var event TransitionEvent
	updated, err := e.store.Update(ctx, syllabusID, func(s *models.Syllabus) error {
		step, err := actionableStep(s, actingRole)
		if err != nil {
			return err
		}

		step.Decision = models.DecisionApproved
		decisionAt := now
		step.DecisionAt = &decisionAt
		step.SignatureRef = signatureRef
		step.Comment = strings.TrimSpace(comment)
		step.ApproverID = actorID

		oldStatus := s.Status
		if nextRole, ok := models.NextReviewRole(actingRole); ok {
			status, _ := models.ReviewStatusForRole(nextRole)
			s.Status = status
			s.CurrentApproverRole = &nextRole
			if next := s.StepForRole(nextRole); next != nil {
				nextID := next.ApproverID
				s.CurrentApproverID = &nextID
			}
		} else {
			s.Status = models.StatusApproved
			s.CurrentApproverID = nil
			s.CurrentApproverRole = nil
			if v := s.CurrentVersion(); v != nil && v.Outcome == models.VersionCurrent {
				v.Outcome = models.VersionApproved
				v.ApprovedBy = step.ApproverName
			}
		}

		event = TransitionEvent{
			OldStatus:  oldStatus,
			NewStatus:  s.Status,
			ActingRole: actingRole,
			ActorName:  step.ApproverName,
			Comment:    step.Comment,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event.Syllabus = *updated
	e.emit(ctx, event)
	return updated, nil
}

// RequestRevision sends the syllabus back to the submitting faculty with a
// mandatory comment. The rejecting step and the current version both record
// the decision.
func (e *WorkflowEngine) RequestRevision(ctx context.Context, syllabusID string, actingRole, actorID int, comment string) (*models.Syllabus, error) {
	if !models.RoleHasCapability(actingRole, models.CapabilityRequestRevision) {
		return nil, unauthorizedf("role %s may not request revisions", models.RoleLabel(actingRole))
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, validationf("comment is required to request a revision")
	}

	now := e.now()
	var event TransitionEvent
	updated, err := e.store.Update(ctx, syllabusID, func(s *models.Syllabus) error {
		step, err := actionableStep(s, actingRole)
		if err != nil {
			return err
		}

		step.Decision = models.DecisionRevisionRequired
		decisionAt := now
		step.DecisionAt = &decisionAt
		step.Comment = comment
		step.ApproverID = actorID

		s.Comments = append(s.Comments, models.SyllabusComment{
			SyllabusID: s.SyllabusID,
			AuthorID:   actorID,
			AuthorName: step.ApproverName,
			RoleID:     actingRole,
			Text:       comment,
			CreateAt:   now,
		})

		oldStatus := s.Status
		s.Status = models.StatusRevisionRequired
		facultyID := s.FacultyID
		facultyRole := models.RoleFaculty
		s.CurrentApproverID = &facultyID
		s.CurrentApproverRole = &facultyRole

		if v := s.CurrentVersion(); v != nil && v.Outcome == models.VersionCurrent {
			v.Outcome = models.VersionRevisionRequired
			v.RejectedBy = step.ApproverName
			v.Comment = comment
		}

		event = TransitionEvent{
			OldStatus:  oldStatus,
			NewStatus:  s.Status,
			ActingRole: actingRole,
			ActorName:  step.ApproverName,
			Comment:    comment,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event.Syllabus = *updated
	e.emit(ctx, event)
	return updated, nil
}

// actionableStep returns the pending step actingRole may decide. Acting out
// of turn is an authorization failure; acting on a syllabus that is terminal
// or awaiting revision is a state failure.
func actionableStep(s *models.Syllabus, actingRole int) (*models.ApprovalStep, error) {
	switch s.Status {
	case models.StatusApproved:
		return nil, invalidStatef("syllabus is already fully approved")
	case models.StatusRevisionRequired:
		return nil, invalidStatef("syllabus is awaiting a revised submission")
	}

	expected := 0
	if s.CurrentApproverRole != nil {
		expected = *s.CurrentApproverRole
	}
	if actingRole != expected {
		return nil, unauthorizedf("it is not the %s's turn to act on this syllabus", models.RoleLabel(actingRole))
	}

	stage, ok := models.ReviewStatusForRole(actingRole)
	if !ok || s.Status != stage {
		return nil, invalidStatef("syllabus is not in the %s review stage", models.RoleLabel(actingRole))
	}

	step := s.StepForRole(actingRole)
	if step == nil {
		return nil, invalidStatef("approval chain is missing the %s step", models.RoleLabel(actingRole))
	}
	if step.Decision != models.DecisionPending {
		return nil, unauthorizedf("the %s step has already been decided", models.RoleLabel(actingRole))
	}
	return step, nil
}

// Get returns one syllabus, NotFound when absent.
func (e *WorkflowEngine) Get(ctx context.Context, syllabusID string) (*models.Syllabus, error) {
	return e.store.Get(ctx, syllabusID)
}

// QueueForRole lists syllabi awaiting the given approver role's action.
func (e *WorkflowEngine) QueueForRole(ctx context.Context, roleID int) ([]models.Syllabus, error) {
	if _, ok := models.ReviewStatusForRole(roleID); !ok {
		return nil, unauthorizedf("role %s has no approval queue", models.RoleLabel(roleID))
	}
	return e.store.ListByCurrentApproverRole(ctx, roleID)
}

// QueueForFaculty lists a faculty member's own syllabi.
func (e *WorkflowEngine) QueueForFaculty(ctx context.Context, facultyID int) ([]models.Syllabus, error) {
	return e.store.ListByFaculty(ctx, facultyID)
}

// ListAll returns every syllabus, for the admin view.
func (e *WorkflowEngine) ListAll(ctx context.Context) ([]models.Syllabus, error) {
	return e.store.ListAll(ctx)
}

// Timeline returns the ordered approval steps for a syllabus.
func (e *WorkflowEngine) Timeline(ctx context.Context, syllabusID string) ([]models.ApprovalStep, error) {
	s, err := e.store.Get(ctx, syllabusID)
	if err != nil {
		return nil, err
	}
	return s.ApprovalSteps, nil
}

// Versions returns the ordered version history for a syllabus.
func (e *WorkflowEngine) Versions(ctx context.Context, syllabusID string) ([]models.SyllabusVersion, error) {
	s, err := e.store.Get(ctx, syllabusID)
	if err != nil {
		return nil, err
	}
	return s.Versions, nil
}

// CommentLog returns the append-only comment log for a syllabus.
func (e *WorkflowEngine) CommentLog(ctx context.Context, syllabusID string) ([]models.SyllabusComment, error) {
	s, err := e.store.Get(ctx, syllabusID)
	if err != nil {
		return nil, err
	}
	return s.Comments, nil
}

// Notifications exposes the notification store for the side channel
// endpoints.
func (e *WorkflowEngine) Notifications() NotificationStore {
	return e.notifications
}

func (e *WorkflowEngine) emit(ctx context.Context, event TransitionEvent) {
	derived := DeriveNotifications(event, e.directory)
	if len(derived) == 0 {
		return
	}
	// Notification persistence is best-effort: the transition itself has
	// already committed.
	_ = e.notifications.CreateNotifications(ctx, derived)
	if e.mailer != nil {
		for _, n := range derived {
			e.mailer.Send(n.UserID, n.Title, n.Message)
		}
	}
}
