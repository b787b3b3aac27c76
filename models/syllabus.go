package models

import "time"

// Syllabus lifecycle statuses. A syllabus enters dept_head_review on
// submission and only ever leaves through engine transitions; approved is
// terminal for the version cycle.
const (
	StatusDeptHeadReview   = "dept_head_review"
	StatusDeanReview       = "dean_review"
	StatusCITLReview       = "citl_review"
	StatusVPAAReview       = "vpaa_review"
	StatusApproved         = "approved"
	StatusRevisionRequired = "revision_required"
)

// Approval step decisions.
const (
	DecisionPending          = "pending"
	DecisionApproved         = "approved"
	DecisionRevisionRequired = "revision_required"
)

// Version outcomes.
const (
	VersionCurrent          = "current"
	VersionApproved         = "approved"
	VersionRevisionRequired = "revision_required"
)

// ApproverChain is the fixed review order. Index 0 acts first.
var ApproverChain = []int{RoleDeptHead, RoleDean, RoleCITLDirector, RoleVPAA}

// ChainLength is the number of approval steps per syllabus: the originating
// faculty step plus one step per approver role.
const ChainLength = 5

// ReviewStatusForRole maps an approver role to the status in which that role
// holds the pending step.
func ReviewStatusForRole(roleID int) (string, bool) {
	switch roleID {
	case RoleDeptHead:
		return StatusDeptHeadReview, true
	case RoleDean:
		return StatusDeanReview, true
	case RoleCITLDirector:
		return StatusCITLReview, true
	case RoleVPAA:
		return StatusVPAAReview, true
	}
	return "", false
}

// NextReviewRole returns the role that acts after roleID in the chain, or
// false when roleID is the last approver.
func NextReviewRole(roleID int) (int, bool) {
	for i, r := range ApproverChain {
		if r == roleID && i+1 < len(ApproverChain) {
			return ApproverChain[i+1], true
		}
	}
	return 0, false
}

type Syllabus struct {
	SyllabusID          string     `gorm:"primaryKey;column:syllabus_id" json:"syllabus_id"`
	CourseCode          string     `gorm:"column:course_code" json:"course_code"`
	CourseTitle         string     `gorm:"column:course_title" json:"course_title"`
	Semester            string     `gorm:"column:semester" json:"semester"`
	Department          string     `gorm:"column:department" json:"department"`
	FacultyID           int        `gorm:"column:faculty_id" json:"faculty_id"`
	FacultyName         string     `gorm:"column:faculty_name" json:"faculty_name"`
	Status              string     `gorm:"column:status" json:"status"`
	CurrentApproverID   *int       `gorm:"column:current_approver_id" json:"current_approver_id,omitempty"`
	CurrentApproverRole *int       `gorm:"column:current_approver_role" json:"current_approver_role,omitempty"`
	SubmittedAt         time.Time  `gorm:"column:submitted_at" json:"submitted_at"`
	CreateAt            time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt            time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt            *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	ApprovalSteps []ApprovalStep    `gorm:"foreignKey:SyllabusID" json:"approval_steps,omitempty"`
	Comments      []SyllabusComment `gorm:"foreignKey:SyllabusID" json:"comments,omitempty"`
	Versions      []SyllabusVersion `gorm:"foreignKey:SyllabusID" json:"versions,omitempty"`
}

// CurrentVersion returns the latest version record, nil when none exist.
func (s *Syllabus) CurrentVersion() *SyllabusVersion {
	if len(s.Versions) == 0 {
		return nil
	}
	return &s.Versions[len(s.Versions)-1]
}

// StepForRole returns the approval step held by roleID, nil when absent.
func (s *Syllabus) StepForRole(roleID int) *ApprovalStep {
	for i := range s.ApprovalSteps {
		if s.ApprovalSteps[i].RoleID == roleID {
			return &s.ApprovalSteps[i]
		}
	}
	return nil
}

// ApprovalStep is one role's decision record within a syllabus's chain.
// The five steps are created at submission and never reordered; only the
// decision fields mutate, and only for the step at the front of the chain.
type ApprovalStep struct {
	StepID       int        `gorm:"primaryKey;column:step_id" json:"step_id"`
	SyllabusID   string     `gorm:"column:syllabus_id" json:"syllabus_id"`
	StepOrder    int        `gorm:"column:step_order" json:"step_order"`
	RoleID       int        `gorm:"column:role_id" json:"role_id"`
	ApproverID   int        `gorm:"column:approver_id" json:"approver_id"`
	ApproverName string     `gorm:"column:approver_name" json:"approver_name"`
	Decision     string     `gorm:"column:decision" json:"decision"`
	DecisionAt   *time.Time `gorm:"column:decision_at" json:"decision_at,omitempty"`
	SignatureRef string     `gorm:"column:signature_ref" json:"signature_ref,omitempty"`
	Comment      string     `gorm:"column:comment" json:"comment,omitempty"`
}

// SyllabusComment is an append-only reviewer remark, kept separate from the
// per-step comments for cross-cutting commentary.
type SyllabusComment struct {
	CommentID  int       `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	SyllabusID string    `gorm:"column:syllabus_id" json:"syllabus_id"`
	AuthorID   int       `gorm:"column:author_id" json:"author_id"`
	AuthorName string    `gorm:"column:author_name" json:"author_name"`
	RoleID     int       `gorm:"column:role_id" json:"role_id"`
	Text       string    `gorm:"column:text" json:"text"`
	CreateAt   time.Time `gorm:"column:create_at" json:"create_at"`
}

// SyllabusVersion is one uploaded document snapshot. A new revision upload
// always appends a new version; existing rows only transition their outcome
// out of "current".
type SyllabusVersion struct {
	VersionID     int       `gorm:"primaryKey;column:version_id" json:"version_id"`
	SyllabusID    string    `gorm:"column:syllabus_id" json:"syllabus_id"`
	VersionNumber int       `gorm:"column:version_number" json:"version_number"`
	FileID        int       `gorm:"column:file_id" json:"file_id"`
	FileName      string    `gorm:"column:file_name" json:"file_name"`
	UploadedAt    time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
	Outcome       string    `gorm:"column:outcome" json:"outcome"`
	Comment       string    `gorm:"column:comment" json:"comment,omitempty"`
	ApprovedBy    string    `gorm:"column:approved_by" json:"approved_by,omitempty"`
	RejectedBy    string    `gorm:"column:rejected_by" json:"rejected_by,omitempty"`
}

// TableName overrides
func (Syllabus) TableName() string {
	return "syllabi"
}

func (ApprovalStep) TableName() string {
	return "approval_steps"
}

func (SyllabusComment) TableName() string {
	return "syllabus_comments"
}

func (SyllabusVersion) TableName() string {
	return "syllabus_versions"
}
