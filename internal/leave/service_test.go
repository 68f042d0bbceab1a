package leave_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
	"github.com/peoplekit/hrcore/internal/leave"
	"github.com/peoplekit/hrcore/internal/workflow"
)

var _ = Describe("Leave Service", func() {
	var (
		repo     *mockRepository
		recorder *mockRecorder
		svc      *leave.Service

		alice *authz.Actor // employee, profile 1
		bob   *authz.Actor // alice's manager, profile 2
		hr    *authz.Actor
	)

	bobID := int64(2)

	newRequest := func(owner int64) *leave.Request {
		req := &leave.Request{
			OrgID:          1,
			OwnerProfileID: owner,
			Kind:           leave.KindCasual,
			StartDate:      time.Now().AddDate(0, 0, 7),
			EndDate:        time.Now().AddDate(0, 0, 9),
			Reason:         "family visit",
			Status:         workflow.StatusPending,
		}
		Expect(repo.Create(req)).To(Succeed())
		return req
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		dir := newMockDirectory()
		dir.addProfile(&directory.Profile{ID: 1, OrgID: 1, UserID: 101, FullName: "Alice", Status: "active", ManagerID: &bobID})
		dir.addProfile(&directory.Profile{ID: 2, OrgID: 1, UserID: 102, FullName: "Bob", Status: "active"})
		dir.addProfile(&directory.Profile{ID: 3, OrgID: 1, UserID: 103, FullName: "Meera", Status: "active"})
		dir.roles[103] = []string{directory.RoleHR}

		resolver := authz.NewResolver(dir, logger)
		gate := authz.NewGate(resolver, logger)
		engine := workflow.NewEngine(resolver, logger)

		repo = newMockRepository()
		recorder = &mockRecorder{}
		svc = leave.NewService(repo, gate, engine, recorder, logger)

		alice = authz.NewActor(101, 1, 1, "Alice", nil)
		bob = authz.NewActor(102, 2, 1, "Bob", nil)
		hr = authz.NewActor(103, 3, 1, "Meera", []string{directory.RoleHR})
	})

	Describe("SubmitRequest", func() {
		It("creates a pending request owned by the caller", func() {
			req, err := svc.SubmitRequest(context.Background(), alice, leave.CreateRequestDTO{
				Kind:      leave.KindSick,
				StartDate: time.Now().AddDate(0, 0, 1),
				EndDate:   time.Now().AddDate(0, 0, 2),
				Reason:    "fever",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(req.Status).To(Equal(workflow.StatusPending))
			Expect(req.OwnerProfileID).To(Equal(int64(1)))
			Expect(recorder.actions()).To(ContainElement("leave_submitted"))
		})

		It("rejects an end date before the start date", func() {
			_, err := svc.SubmitRequest(context.Background(), alice, leave.CreateRequestDTO{
				Kind:      leave.KindCasual,
				StartDate: time.Now().AddDate(0, 0, 5),
				EndDate:   time.Now().AddDate(0, 0, 2),
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Transition", func() {
		It("lets the direct manager approve and audits the owner as target", func() {
			req := newRequest(1)

			updated, err := svc.Transition(context.Background(), bob, req.ID, workflow.ActionApprove, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(workflow.StatusApproved))
			Expect(updated.ReviewedBy).ToNot(BeNil())
			Expect(*updated.ReviewedBy).To(Equal(int64(2)))

			var found bool
			for _, p := range recorder.params {
				if p.Action == "leave_approved" {
					found = true
					Expect(p.TargetProfileID).ToNot(BeNil())
					Expect(*p.TargetProfileID).To(Equal(int64(1)))
				}
			}
			Expect(found).To(BeTrue())
		})

		It("refuses a second approval of the same request", func() {
			req := newRequest(1)

			_, err := svc.Transition(context.Background(), bob, req.ID, workflow.ActionApprove, nil)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Transition(context.Background(), hr, req.ID, workflow.ActionApprove, nil)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})

		It("refuses approval by a co-worker", func() {
			req := newRequest(2) // bob's own request

			_, err := svc.Transition(context.Background(), alice, req.ID, workflow.ActionApprove, nil)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(HaveKeyWithValue("reason", string(authz.DenyWrongRole)))
		})

		It("lets HR reject with notes", func() {
			req := newRequest(1)
			notes := "blackout week"

			updated, err := svc.Transition(context.Background(), hr, req.ID, workflow.ActionReject, &notes)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(workflow.StatusRejected))
			Expect(updated.ReviewerNotes).ToNot(BeNil())
			Expect(*updated.ReviewerNotes).To(Equal(notes))
			Expect(recorder.actions()).To(ContainElement("leave_rejected"))
		})

		It("refuses a reviewer from another org", func() {
			req := newRequest(1)

			outsider := authz.NewActor(999, 99, 2, "Outsider", []string{directory.RoleAdmin})
			_, err := svc.Transition(context.Background(), outsider, req.ID, workflow.ActionApprove, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetRequest", func() {
		It("lets the owner and the manager read, but not a stranger", func() {
			req := newRequest(1)

			_, err := svc.GetRequest(context.Background(), alice, req.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.GetRequest(context.Background(), bob, req.ID)
			Expect(err).ToNot(HaveOccurred())

			stranger := authz.NewActor(104, 4, 1, "Dev", nil)
			_, err = svc.GetRequest(context.Background(), stranger, req.ID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListRequests", func() {
		It("scopes employees to their own rows and HR to the org", func() {
			newRequest(1)
			newRequest(2)

			own, err := svc.ListRequests(context.Background(), alice, 50, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(own).To(HaveLen(1))

			all, err := svc.ListRequests(context.Background(), hr, 50, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})
})
