package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"syllabus-approval-api/models"
	"syllabus-approval-api/services"
)

// stubAuth stands in for AuthMiddleware, injecting the identity the JWT
// middleware would have set.
func stubAuth(userID, roleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("roleID", roleID)
		c.Next()
	}
}

func newTestRouter(t *testing.T) *services.WorkflowEngine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewMemoryStore()
	directory := &services.StaticApproverDirectory{Approvers: map[int]models.User{
		models.RoleDeptHead:     {UserID: 2, UserFname: "Sarah", UserLname: "Johnson", RoleID: models.RoleDeptHead},
		models.RoleDean:         {UserID: 3, UserFname: "Michael", UserLname: "Brown", RoleID: models.RoleDean},
		models.RoleCITLDirector: {UserID: 4, UserFname: "Emily", UserLname: "Davis", RoleID: models.RoleCITLDirector},
		models.RoleVPAA:         {UserID: 5, UserFname: "Robert", UserLname: "Wilson", RoleID: models.RoleVPAA},
	}}
	e := services.NewWorkflowEngine(store, store, directory)
	SetEngine(e)
	return e
}

func serve(userID, roleID int, method, path, body string) *httptest.ResponseRecorder {
	router := gin.New()
	group := router.Group("/api/v1", stubAuth(userID, roleID))
	group.GET("/approvals/queue", GetApprovalQueue)
	group.POST("/syllabi/:id/approve", ApproveSyllabus)
	group.POST("/syllabi/:id/request-revision", RequestSyllabusRevision)
	group.GET("/notifications", GetNotifications)
	group.GET("/notifications/unread-count", GetNotificationCounter)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func submitTestSyllabus(t *testing.T, e *services.WorkflowEngine) string {
	t.Helper()
	s, err := e.Submit(context.Background(), models.RoleFaculty, services.SubmitInput{
		FacultyID:    1,
		FacultyName:  "John Smith",
		CourseCode:   "CS101",
		CourseTitle:  "Introduction to Computer Science",
		Semester:     "1/2026",
		Department:   "Computer Science",
		FileID:       100,
		FileName:     "CS101_Syllabus.pdf",
		SignatureRef: "sig-faculty-1",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return s.SyllabusID
}

func TestApproveEndpointAdvancesChain(t *testing.T) {
	e := newTestRouter(t)
	id := submitTestSyllabus(t, e)

	w := serve(2, models.RoleDeptHead, http.MethodPost, "/api/v1/syllabi/"+id+"/approve",
		`{"signature":"sig-head-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success  bool            `json:"success"`
		Syllabus models.Syllabus `json:"syllabus"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Syllabus.Status != models.StatusDeanReview {
		t.Errorf("status after approval = %q, want %q", resp.Syllabus.Status, models.StatusDeanReview)
	}
}

func TestApproveEndpointErrorMapping(t *testing.T) {
	e := newTestRouter(t)
	id := submitTestSyllabus(t, e)

	// Out of turn: the dean acts while the syllabus sits with the dept head.
	if w := serve(3, models.RoleDean, http.MethodPost, "/api/v1/syllabi/"+id+"/approve",
		`{"signature":"sig-dean-1"}`); w.Code != http.StatusForbidden {
		t.Errorf("out-of-turn approve: status = %d, want 403", w.Code)
	}

	// Missing signature.
	if w := serve(2, models.RoleDeptHead, http.MethodPost, "/api/v1/syllabi/"+id+"/approve",
		`{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing signature: status = %d, want 400", w.Code)
	}

	// Unknown syllabus.
	if w := serve(2, models.RoleDeptHead, http.MethodPost, "/api/v1/syllabi/nope/approve",
		`{"signature":"sig"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown syllabus: status = %d, want 404", w.Code)
	}
}

func TestRequestRevisionEndpoint(t *testing.T) {
	e := newTestRouter(t)
	id := submitTestSyllabus(t, e)

	// Empty comment is a validation error.
	if w := serve(2, models.RoleDeptHead, http.MethodPost, "/api/v1/syllabi/"+id+"/request-revision",
		`{"comment":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty comment: status = %d, want 400", w.Code)
	}

	w := serve(2, models.RoleDeptHead, http.MethodPost, "/api/v1/syllabi/"+id+"/request-revision",
		`{"comment":"Fix the grading rubric"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	// Acting on a syllabus already back with faculty conflicts.
	if w := serve(2, models.RoleDeptHead, http.MethodPost, "/api/v1/syllabi/"+id+"/approve",
		`{"signature":"sig"}`); w.Code != http.StatusConflict {
		t.Errorf("approve while in revision: status = %d, want 409", w.Code)
	}
}

func TestApprovalQueueEndpoint(t *testing.T) {
	e := newTestRouter(t)
	submitTestSyllabus(t, e)

	w := serve(2, models.RoleDeptHead, http.MethodGet, "/api/v1/approvals/queue", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Total   int               `json:"total"`
		Syllabi []models.Syllabus `json:"syllabi"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("queue total = %d, want 1", resp.Total)
	}

	// Faculty has no approval queue.
	if w := serve(1, models.RoleFaculty, http.MethodGet, "/api/v1/approvals/queue", ""); w.Code != http.StatusForbidden {
		t.Errorf("faculty queue: status = %d, want 403", w.Code)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	e := newTestRouter(t)
	submitTestSyllabus(t, e)

	// The dept head received the submission notification.
	w := serve(2, models.RoleDeptHead, http.MethodGet, "/api/v1/notifications/unread-count", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var counter struct {
		Unread int `json:"unread"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &counter); err != nil {
		t.Fatal(err)
	}
	if counter.Unread != 1 {
		t.Errorf("unread = %d, want 1", counter.Unread)
	}

	w = serve(2, models.RoleDeptHead, http.MethodGet, "/api/v1/notifications?unreadOnly=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var list struct {
		Items []models.Notification `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 1 || list.Items[0].Title != "New Syllabus Submission" {
		t.Errorf("items = %+v", list.Items)
	}

	// Another user sees nothing.
	w = serve(3, models.RoleDean, http.MethodGet, "/api/v1/notifications/unread-count", "")
	if err := json.Unmarshal(w.Body.Bytes(), &counter); err != nil {
		t.Fatal(err)
	}
	if counter.Unread != 0 {
		t.Errorf("dean unread = %d, want 0", counter.Unread)
	}
}
