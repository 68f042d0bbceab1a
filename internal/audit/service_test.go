package audit_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
)

var _ = Describe("Audit Service", func() {
	var (
		repo *mockRepository
		svc  *audit.Service
	)

	actor := authz.NewActor(101, 1, 1, "Asha", nil)
	hr := authz.NewActor(103, 3, 1, "Meera", []string{directory.RoleHR})

	BeforeEach(func() {
		repo = &mockRepository{}
		dir := newMockDirectory()
		dir.profilesByID[1] = &directory.Profile{ID: 1, OrgID: 1, UserID: 101, FullName: "Asha Employee", Status: "active"}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = audit.NewService(repo, dir, logger)
	})

	Describe("Record", func() {
		It("denormalizes actor and target identity into the entry", func() {
			targetID := int64(1)
			err := svc.Record(context.Background(), hr, audit.Params{
				Action:          "leave_approved",
				EntityType:      authz.EntityLeaveRequest,
				EntityID:        7,
				TargetProfileID: &targetID,
				Metadata:        map[string]interface{}{"from": "pending", "to": "approved"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.entries).To(HaveLen(1))

			entry := repo.entries[0]
			Expect(entry.ID).To(HaveLen(26))
			Expect(entry.ActorID).To(Equal(int64(103)))
			Expect(entry.ActorName).To(Equal("Meera"))
			Expect(entry.TargetName).ToNot(BeNil())
			Expect(*entry.TargetName).To(Equal("Asha Employee"))

			var meta map[string]string
			Expect(json.Unmarshal(entry.Metadata, &meta)).To(Succeed())
			Expect(meta).To(HaveKeyWithValue("to", "approved"))
		})

		It("keeps the entry even when the target profile is gone", func() {
			missing := int64(99)
			err := svc.Record(context.Background(), hr, audit.Params{
				Action:          "leave_approved",
				EntityType:      authz.EntityLeaveRequest,
				EntityID:        7,
				TargetProfileID: &missing,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.entries[0].TargetName).To(BeNil())
		})

		It("assigns chronologically ordered ids", func() {
			for i := 0; i < 3; i++ {
				Expect(svc.Record(context.Background(), hr, audit.Params{Action: "memo_published", EntityType: authz.EntityMemo, EntityID: int64(i)})).To(Succeed())
			}
			Expect(repo.entries[0].ID < repo.entries[1].ID).To(BeTrue())
			Expect(repo.entries[1].ID < repo.entries[2].ID).To(BeTrue())
		})
	})

	Describe("RecordSystem", func() {
		It("attributes machine side effects to the system actor", func() {
			svc.RecordSystem(context.Background(), 1, audit.Params{
				Action:     "journal_posted",
				EntityType: authz.EntityExpense,
				EntityID:   42,
			})
			Expect(repo.entries).To(HaveLen(1))
			Expect(repo.entries[0].ActorID).To(BeZero())
			Expect(repo.entries[0].ActorName).To(Equal("system"))
		})
	})

	Describe("List", func() {
		It("refuses non-privileged actors", func() {
			_, err := svc.List(actor, audit.Filter{})
			Expect(err).To(HaveOccurred())
		})

		It("lets HR list the org trail", func() {
			Expect(svc.Record(context.Background(), hr, audit.Params{Action: "memo_published", EntityType: authz.EntityMemo, EntityID: 1})).To(Succeed())

			entries, err := svc.List(hr, audit.Filter{})
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("caps an out-of-range limit", func() {
			_, err := svc.List(hr, audit.Filter{Limit: 5000})
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(50))

			_, err = svc.List(hr, audit.Filter{Limit: 0})
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(50))

			_, err = svc.List(hr, audit.Filter{Limit: 20})
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(20))
		})
	})
})
