package expense_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
	"github.com/peoplekit/hrcore/internal/expense"
	"github.com/peoplekit/hrcore/internal/storage"
	"github.com/peoplekit/hrcore/internal/workflow"
)

type noopOverrideAuditor struct{}

func (noopOverrideAuditor) RecordOverride(ctx context.Context, actor *authz.Actor, event, reason string) {
}

var _ = Describe("Expense Service", func() {
	var (
		repo     *mockRepository
		poster   *mockPoster
		recorder *mockRecorder
		guard    *workflow.DeleteGuard
		svc      *expense.Service

		owner   *authz.Actor
		manager *authz.Actor
		finance *authz.Actor
	)

	managerID := int64(2)

	newExpense := func(status string) *expense.Expense {
		exp := &expense.Expense{
			OrgID:          1,
			OwnerProfileID: 1,
			AmountINR:      125000,
			Description:    "client travel",
			Category:       "travel",
			Status:         status,
			ExpenseDate:    time.Now().AddDate(0, 0, -3),
		}
		Expect(repo.Create(exp)).To(Succeed())
		return exp
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		dir := newMockDirectory()
		dir.addProfile(&directory.Profile{ID: 1, OrgID: 1, UserID: 101, FullName: "Asha", Status: "active", ManagerID: &managerID})
		dir.addProfile(&directory.Profile{ID: 2, OrgID: 1, UserID: 102, FullName: "Arun", Status: "active"})
		dir.addProfile(&directory.Profile{ID: 3, OrgID: 1, UserID: 103, FullName: "Vikram", Status: "active"})
		dir.roles[103] = []string{directory.RoleFinance}

		resolver := authz.NewResolver(dir, logger)
		gate := authz.NewGate(resolver, logger)
		engine := workflow.NewEngine(resolver, logger)

		repo = newMockRepository()
		poster = newMockPoster()
		recorder = &mockRecorder{}
		guard = workflow.NewDeleteGuard(noopOverrideAuditor{}, logger)

		svc = expense.NewService(repo, gate, engine, poster, recorder, guard, storage.NewAccessPolicy(gate), nil, logger)

		owner = authz.NewActor(101, 1, 1, "Asha", nil)
		manager = authz.NewActor(102, 2, 1, "Arun", nil)
		finance = authz.NewActor(103, 3, 1, "Vikram", []string{directory.RoleFinance})
	})

	Describe("SubmitExpense", func() {
		It("creates the expense in submitted status and audits it", func() {
			exp, err := svc.SubmitExpense(context.Background(), owner, expense.CreateExpenseDTO{
				AmountINR:   45000,
				Description: "team lunch",
				Category:    "meals",
				ExpenseDate: time.Now(),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(exp.Status).To(Equal(workflow.StatusSubmitted))
			Expect(exp.OwnerProfileID).To(Equal(int64(1)))
			Expect(recorder.actions).To(ContainElement("expense_submitted"))
		})

		It("rejects a non-positive amount", func() {
			_, err := svc.SubmitExpense(context.Background(), owner, expense.CreateExpenseDTO{
				AmountINR:   0,
				Description: "nothing",
				Category:    "misc",
				ExpenseDate: time.Now(),
			})
			Expect(err).To(HaveOccurred())
		})

		It("accepts a receipt key in the submitter's own folder", func() {
			key := "expense/1/receipt.pdf"
			exp, err := svc.SubmitExpense(context.Background(), owner, expense.CreateExpenseDTO{
				AmountINR:   45000,
				Description: "team lunch",
				Category:    "meals",
				ReceiptKey:  &key,
				ExpenseDate: time.Now(),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(exp.ReceiptKey).ToNot(BeNil())
			Expect(*exp.ReceiptKey).To(Equal(key))
		})

		It("rejects a receipt key naming someone else's folder", func() {
			key := "expense/2/receipt.pdf"
			_, err := svc.SubmitExpense(context.Background(), owner, expense.CreateExpenseDTO{
				AmountINR:   45000,
				Description: "team lunch",
				Category:    "meals",
				ReceiptKey:  &key,
				ExpenseDate: time.Now(),
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(HaveKeyWithValue("reason", string(authz.DenyNotOwner)))
		})

		It("rejects a malformed receipt key", func() {
			key := "receipt.pdf"
			_, err := svc.SubmitExpense(context.Background(), owner, expense.CreateExpenseDTO{
				AmountINR:   45000,
				Description: "team lunch",
				Category:    "meals",
				ReceiptKey:  &key,
				ExpenseDate: time.Now(),
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetReceiptKey", func() {
		receiptKey := "expense/1/receipt.pdf"

		newExpenseWithReceipt := func(status string) *expense.Expense {
			exp := newExpense(status)
			key := receiptKey
			repo.expenses[exp.ID].ReceiptKey = &key
			return exp
		}

		It("gives the owner their own receipt", func() {
			exp := newExpenseWithReceipt(workflow.StatusSubmitted)

			key, err := svc.GetReceiptKey(context.Background(), owner, exp.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(key).To(Equal(receiptKey))
		})

		It("gives the receipt exactly the expense's visibility", func() {
			exp := newExpenseWithReceipt(workflow.StatusSubmitted)

			_, err := svc.GetReceiptKey(context.Background(), manager, exp.ID)
			Expect(err).ToNot(HaveOccurred())

			coworker := authz.NewActor(103, 3, 1, "Vikram", nil)
			_, err = svc.GetReceiptKey(context.Background(), coworker, exp.ID)
			Expect(err).To(HaveOccurred())
		})

		It("denies a stored key pointing at another owner's folder", func() {
			exp := newExpense(workflow.StatusSubmitted)
			forged := "expense/2/receipt.pdf"
			repo.expenses[exp.ID].ReceiptKey = &forged

			_, err := svc.GetReceiptKey(context.Background(), owner, exp.ID)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(HaveKeyWithValue("reason", string(authz.DenyNotOwner)))
		})

		It("reports no receipt as not found", func() {
			exp := newExpense(workflow.StatusSubmitted)

			_, err := svc.GetReceiptKey(context.Background(), owner, exp.ID)
			Expect(err).To(MatchError(internal.ErrRecordNotFound))
		})
	})

	Describe("Transition", func() {
		It("never posts on approval", func() {
			exp := newExpense(workflow.StatusSubmitted)

			updated, err := svc.Transition(context.Background(), manager, exp.ID, workflow.ActionApprove, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(workflow.StatusApproved))
			Expect(poster.posts).To(BeEmpty())
			Expect(recorder.actions).To(ContainElement("expense_approved"))
		})

		It("posts exactly once when finance pays", func() {
			exp := newExpense(workflow.StatusApproved)

			updated, err := svc.Transition(context.Background(), finance, exp.ID, workflow.ActionPay, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(workflow.StatusPaid))
			Expect(poster.posts[exp.ID]).To(Equal(1))
			Expect(recorder.actions).To(ContainElement("expense_paid"))
		})

		It("does not post again when pay is retried", func() {
			exp := newExpense(workflow.StatusApproved)

			_, err := svc.Transition(context.Background(), finance, exp.ID, workflow.ActionPay, nil)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Transition(context.Background(), finance, exp.ID, workflow.ActionPay, nil)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
			Expect(poster.posts[exp.ID]).To(Equal(1))
		})

		It("does not post when the status precondition is lost", func() {
			exp := newExpense(workflow.StatusApproved)

			// another reviewer committed first; the stored row moved on
			repo.expenses[exp.ID].Status = workflow.StatusPaid

			_, err := svc.Transition(context.Background(), finance, exp.ID, workflow.ActionPay, nil)
			Expect(err).To(HaveOccurred())
			Expect(poster.posts[exp.ID]).To(BeZero())
		})

		It("refuses pay from the owner's manager", func() {
			exp := newExpense(workflow.StatusApproved)

			_, err := svc.Transition(context.Background(), manager, exp.ID, workflow.ActionPay, nil)
			Expect(err).To(HaveOccurred())
			Expect(poster.posts).To(BeEmpty())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(HaveKeyWithValue("reason", string(authz.DenyWrongRole)))
		})

		It("refuses a reviewer from another org", func() {
			exp := newExpense(workflow.StatusSubmitted)

			outsider := authz.NewActor(999, 99, 2, "Outsider", []string{directory.RoleAdmin})
			_, err := svc.Transition(context.Background(), outsider, exp.ID, workflow.ActionApprove, nil)
			Expect(err).To(HaveOccurred())
		})

		It("surfaces a poster failure without swallowing it", func() {
			exp := newExpense(workflow.StatusApproved)
			poster.postError = internal.ErrDuplicateRecord

			_, err := svc.Transition(context.Background(), finance, exp.ID, workflow.ActionPay, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteExpense", func() {
		It("lets the owner delete a submitted expense", func() {
			exp := newExpense(workflow.StatusSubmitted)

			Expect(svc.DeleteExpense(context.Background(), owner, exp.ID)).To(Succeed())
			Expect(recorder.actions).To(ContainElement("expense_deleted"))

			_, err := svc.GetExpense(context.Background(), owner, exp.ID)
			Expect(err).To(HaveOccurred())
		})

		It("blocks deleting a paid expense", func() {
			exp := newExpense(workflow.StatusPaid)

			err := svc.DeleteExpense(context.Background(), owner, exp.ID)
			Expect(err).To(MatchError(internal.ErrDeleteBlocked))
		})

		It("deletes a paid expense inside a maintenance override", func() {
			exp := newExpense(workflow.StatusPaid)
			admin := authz.NewActor(104, 4, 1, "Priya", []string{directory.RoleAdmin})

			err := guard.WithOverride(context.Background(), admin, "duplicate import", func() error {
				return svc.DeleteExpense(context.Background(), admin, exp.ID)
			})
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("ListExpenses", func() {
		It("scopes a plain employee to their own records", func() {
			newExpense(workflow.StatusSubmitted)
			other := &expense.Expense{OrgID: 1, OwnerProfileID: 2, AmountINR: 900, Description: "cab", Category: "travel", Status: workflow.StatusSubmitted, ExpenseDate: time.Now()}
			Expect(repo.Create(other)).To(Succeed())

			list, err := svc.ListExpenses(context.Background(), owner, 50, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].OwnerProfileID).To(Equal(int64(1)))
		})

		It("gives finance the org-wide view", func() {
			newExpense(workflow.StatusSubmitted)
			other := &expense.Expense{OrgID: 1, OwnerProfileID: 2, AmountINR: 900, Description: "cab", Category: "travel", Status: workflow.StatusSubmitted, ExpenseDate: time.Now()}
			Expect(repo.Create(other)).To(Succeed())

			list, err := svc.ListExpenses(context.Background(), finance, 50, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})
	})

	Describe("audit metadata", func() {
		It("records the owner as the target of a transition", func() {
			exp := newExpense(workflow.StatusSubmitted)
			recorder.params = nil

			_, err := svc.Transition(context.Background(), manager, exp.ID, workflow.ActionApprove, nil)
			Expect(err).ToNot(HaveOccurred())

			var found *audit.Params
			for i := range recorder.params {
				if recorder.params[i].Action == "expense_approved" {
					found = &recorder.params[i]
				}
			}
			Expect(found).ToNot(BeNil())
			Expect(found.TargetProfileID).ToNot(BeNil())
			Expect(*found.TargetProfileID).To(Equal(int64(1)))
		})
	})
})
