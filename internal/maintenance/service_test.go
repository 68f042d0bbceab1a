package maintenance_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
	"github.com/peoplekit/hrcore/internal/maintenance"
	"github.com/peoplekit/hrcore/internal/workflow"
)

var _ = Describe("Maintenance Service", func() {
	var (
		guard   *workflow.DeleteGuard
		auditor *mockAuditor
		dir     *mockDirectory
		svc     *maintenance.Service

		deletedIDs []int64
	)

	admin := authz.NewActor(1, 10, 1, "Priya", []string{directory.RoleAdmin})
	hr := authz.NewActor(2, 20, 1, "Meera", []string{directory.RoleHR})

	dto := func(entityType string, id int64, reason string) maintenance.DeleteOverrideDTO {
		return maintenance.DeleteOverrideDTO{EntityType: entityType, EntityID: id, Reason: reason}
	}

	BeforeEach(func() {
		auditor = &mockAuditor{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		guard = workflow.NewDeleteGuard(auditor, logger)

		dir = newMockDirectory()
		dir.addProfile(&directory.Profile{ID: 10, OrgID: 1, UserID: 1, FullName: "Priya", Status: "active"})
		dir.addProfile(&directory.Profile{ID: 20, OrgID: 1, UserID: 2, FullName: "Meera", Status: "active"})
		dir.roles[1] = []string{directory.RoleAdmin}
		dir.roles[2] = []string{directory.RoleHR}

		svc = maintenance.NewService(guard, authz.NewResolver(dir, logger), logger)

		deletedIDs = nil
		svc.RegisterDeleter(authz.EntityExpense, func(ctx context.Context, actor *authz.Actor, id int64) error {
			// the registered deleter runs with the guard lifted
			if err := guard.CheckDelete(true); err != nil {
				return err
			}
			deletedIDs = append(deletedIDs, id)
			return nil
		})
	})

	It("deletes through the registered service path inside an audited window", func() {
		err := svc.DeleteWithOverride(context.Background(), admin, dto(authz.EntityExpense, 42, "duplicate import"))
		Expect(err).ToNot(HaveOccurred())
		Expect(deletedIDs).To(Equal([]int64{42}))
		Expect(auditor.recorded()).To(Equal([]string{"delete_override_begin", "delete_override_end"}))
	})

	It("refuses a non-admin caller", func() {
		err := svc.DeleteWithOverride(context.Background(), hr, dto(authz.EntityExpense, 42, "duplicate import"))
		Expect(err).To(HaveOccurred())
		Expect(deletedIDs).To(BeEmpty())
		Expect(auditor.recorded()).To(BeEmpty())
	})

	It("refuses an admin whose role was revoked after login", func() {
		dir.roles[1] = nil

		err := svc.DeleteWithOverride(context.Background(), admin, dto(authz.EntityExpense, 42, "duplicate import"))
		Expect(err).To(HaveOccurred())
		Expect(deletedIDs).To(BeEmpty())
		Expect(auditor.recorded()).To(BeEmpty())
	})

	It("requires a correction reason", func() {
		err := svc.DeleteWithOverride(context.Background(), admin, dto(authz.EntityExpense, 42, "   "))
		Expect(err).To(HaveOccurred())
		Expect(deletedIDs).To(BeEmpty())
	})

	It("rejects an entity type with no registered deleter", func() {
		err := svc.DeleteWithOverride(context.Background(), admin, dto("journal", 42, "correction"))
		Expect(err).To(HaveOccurred())
	})

	It("closes the window again after the correction", func() {
		Expect(svc.DeleteWithOverride(context.Background(), admin, dto(authz.EntityExpense, 42, "duplicate import"))).To(Succeed())
		Expect(guard.CheckDelete(true)).To(HaveOccurred())
	})
})
