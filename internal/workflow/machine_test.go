package workflow_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
	"github.com/peoplekit/hrcore/internal/workflow"
)

var _ = Describe("Engine", func() {
	var (
		dir    *mockDirectory
		engine *workflow.Engine
	)

	manager := func(id int64) *int64 { return &id }

	newActor := func(userID, profileID int64, roles ...string) *authz.Actor {
		return authz.NewActor(userID, profileID, 1, "test", roles)
	}

	BeforeEach(func() {
		dir = newMockDirectory()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		engine = workflow.NewEngine(authz.NewResolver(dir, logger), logger)

		// bob (profile 2) manages alice (profile 1)
		dir.addProfile(&directory.Profile{ID: 1, OrgID: 1, UserID: 101, FullName: "Alice", Status: "active", ManagerID: manager(2)})
		dir.addProfile(&directory.Profile{ID: 2, OrgID: 1, UserID: 102, FullName: "Bob", Status: "active"})
	})

	Describe("memo lifecycle", func() {
		machine := workflow.MemoMachine()

		It("lets the owner submit a draft", func() {
			next, err := engine.Next(machine, workflow.StatusDraft, workflow.ActionSubmit, newActor(101, 1), 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(next).To(Equal(workflow.StatusPendingApproval))
		})

		It("refuses submit by anyone but the owner", func() {
			_, err := engine.Next(machine, workflow.StatusDraft, workflow.ActionSubmit, newActor(102, 2), 1)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(HaveKeyWithValue("reason", string(authz.DenyNotOwner)))
		})

		It("lets the owner's manager publish", func() {
			next, err := engine.Next(machine, workflow.StatusPendingApproval, workflow.ActionPublish, newActor(102, 2), 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(next).To(Equal(workflow.StatusPublished))
		})

		It("lets any org manager publish", func() {
			orgManager := newActor(103, 3, directory.RoleManager)
			next, err := engine.Next(machine, workflow.StatusPendingApproval, workflow.ActionPublish, orgManager, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(next).To(Equal(workflow.StatusPublished))
		})

		It("treats published as terminal", func() {
			Expect(machine.IsTerminal(workflow.StatusPublished)).To(BeTrue())
			for _, action := range []string{workflow.ActionSubmit, workflow.ActionPublish, workflow.ActionReject} {
				_, err := engine.Next(machine, workflow.StatusPublished, action, newActor(102, 2, directory.RoleAdmin), 1)
				Expect(err).To(MatchError(internal.ErrInvalidTransition))
			}
		})

		It("treats rejected as terminal with no resubmission path", func() {
			Expect(machine.IsTerminal(workflow.StatusRejected)).To(BeTrue())
			_, err := engine.Next(machine, workflow.StatusRejected, workflow.ActionSubmit, newActor(101, 1), 1)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})
	})

	Describe("leave review", func() {
		machine := workflow.LeaveMachine()

		It("lets the direct manager approve", func() {
			next, err := engine.Next(machine, workflow.StatusPending, workflow.ActionApprove, newActor(102, 2), 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(next).To(Equal(workflow.StatusApproved))
		})

		It("refuses an org-wide manager who is not the owner's manager", func() {
			orgManager := newActor(103, 3, directory.RoleManager)
			_, err := engine.Next(machine, workflow.StatusPending, workflow.ActionApprove, orgManager, 1)
			Expect(err).To(HaveOccurred())
		})

		It("lets HR approve without a manager relation", func() {
			next, err := engine.Next(machine, workflow.StatusPending, workflow.ActionApprove, newActor(104, 4, directory.RoleHR), 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(next).To(Equal(workflow.StatusApproved))
		})
	})

	Describe("expense payment authority", func() {
		machine := workflow.ExpenseMachine()

		It("lets the manager approve but not pay", func() {
			next, err := engine.Next(machine, workflow.StatusSubmitted, workflow.ActionApprove, newActor(102, 2), 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(next).To(Equal(workflow.StatusApproved))

			_, err = engine.Next(machine, workflow.StatusApproved, workflow.ActionPay, newActor(102, 2), 1)
			Expect(err).To(HaveOccurred())
		})

		It("lets finance pay an approved expense", func() {
			finance := newActor(105, 5, directory.RoleFinance)
			next, err := engine.Next(machine, workflow.StatusApproved, workflow.ActionPay, finance, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(next).To(Equal(workflow.StatusPaid))
		})

		It("refuses paying straight from submitted", func() {
			finance := newActor(105, 5, directory.RoleFinance)
			_, err := engine.Next(machine, workflow.StatusSubmitted, workflow.ActionPay, finance, 1)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})

		It("treats paid as terminal", func() {
			admin := newActor(106, 6, directory.RoleAdmin)
			_, err := engine.Next(machine, workflow.StatusPaid, workflow.ActionPay, admin, 1)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})
	})

	Describe("nil actors", func() {
		It("denies rather than panics", func() {
			machine := workflow.LeaveMachine()
			_, err := engine.Next(machine, workflow.StatusPending, workflow.ActionApprove, nil, 1)
			Expect(err).To(HaveOccurred())
		})
	})
})
