package services

import (
	"context"
	"errors"
	"testing"

	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/utils"
)

func TestDocumentWorkflow(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	notify := NewNotificationService(db)
	svc := NewDocumentService(db, store, notify)
	tenant := createTenant(t, db, "acme")
	staff := createUser(t, db, tenant, models.UserRoleStaff)
	hr := createUser(t, db, tenant, models.UserRoleHR)

	doc, err := svc.Create(context.Background(), staff, tenant.ID, CreateDocumentInput{
		Type:         models.DocumentTypeApproval,
		Source:       models.DocumentSourceTemplate,
		CompanyName:  "Client Co",
		ContactEmail: "client@client.test",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Status != models.DocumentPending {
		t.Errorf("new document status %s", doc.Status)
	}

	t.Run("staff cannot approve", func(t *testing.T) {
		_, err := svc.Approve(staff, doc.ID)
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("got %v, want ErrUnauthorized", err)
		}
	})

	t.Run("hr approves and author is notified", func(t *testing.T) {
		approved, err := svc.Approve(hr, doc.ID)
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if approved.Status != models.DocumentApproved {
			t.Errorf("status %s", approved.Status)
		}
		if approved.ApprovedByID == nil || *approved.ApprovedByID != hr.ID {
			t.Error("approver not recorded")
		}

		notifications, err := notify.ListForUser(staff, true)
		if err != nil {
			t.Fatalf("list notifications: %v", err)
		}
		if len(notifications) != 1 || notifications[0].Kind != models.NotificationDocumentApproved {
			t.Errorf("notifications: %+v", notifications)
		}
	})

	t.Run("approval is idempotent", func(t *testing.T) {
		if _, err := svc.Approve(hr, doc.ID); err != nil {
			t.Errorf("second approve: %v", err)
		}
		notifications, _ := notify.ListForUser(staff, false)
		if len(notifications) != 1 {
			t.Errorf("duplicate notification on re-approval")
		}
	})

	t.Run("list filters by status", func(t *testing.T) {
		if _, err := svc.Create(context.Background(), staff, tenant.ID, CreateDocumentInput{
			Type:        models.DocumentTypeSLA,
			Source:      models.DocumentSourceEditor,
			CompanyName: "Other Client",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}

		p := utils.PaginationParams{Page: 1, Limit: 20}
		pending, total, err := svc.List(staff, tenant.ID, models.DocumentPending, p)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 || len(pending) != 1 || pending[0].CompanyName != "Other Client" {
			t.Errorf("pending: total=%d docs=%+v", total, pending)
		}

		_, total, err = svc.List(staff, tenant.ID, "", p)
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if total != 2 {
			t.Errorf("total %d, want 2", total)
		}
	})

	t.Run("cross tenant documents hidden", func(t *testing.T) {
		other := createTenant(t, db, "globex")
		outsider := createUser(t, db, other, models.UserRoleAdmin)
		_, err := svc.Get(outsider, doc.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestTaskAssignment(t *testing.T) {
	db := setupDB(t)
	notify := NewNotificationService(db)
	svc := NewTaskService(db, notify)
	tenant := createTenant(t, db, "acme")
	manager := createUser(t, db, tenant, models.UserRoleHR)
	worker := createUser(t, db, tenant, models.UserRoleStaff)

	task, err := svc.Create(manager, tenant.ID, CreateTaskInput{
		Title:        "Review onboarding docs",
		AssignedToID: &worker.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("assignee is notified", func(t *testing.T) {
		notifications, err := notify.ListForUser(worker, true)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(notifications) != 1 || notifications[0].Kind != models.NotificationTaskAssigned {
			t.Errorf("notifications: %+v", notifications)
		}
	})

	t.Run("assignee updates status", func(t *testing.T) {
		updated, err := svc.UpdateStatus(worker, task.ID, models.TaskInProgress)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Status != models.TaskInProgress {
			t.Errorf("status %s", updated.Status)
		}
	})

	t.Run("bystander cannot update status", func(t *testing.T) {
		bystander := createUser(t, db, tenant, models.UserRoleStaff)
		_, err := svc.UpdateStatus(bystander, task.ID, models.TaskCompleted)
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("got %v, want ErrUnauthorized", err)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := svc.UpdateStatus(worker, task.ID, "nonsense")
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("got %v, want ErrInvalidName", err)
		}
	})

	t.Run("assignment to other tenant rejected", func(t *testing.T) {
		other := createTenant(t, db, "globex")
		outsider := createUser(t, db, other, models.UserRoleStaff)
		_, err := svc.Create(manager, tenant.ID, CreateTaskInput{
			Title:        "Leak",
			AssignedToID: &outsider.ID,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}
