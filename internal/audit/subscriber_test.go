package audit_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/core/events"
	"github.com/peoplekit/hrcore/internal/workflow"
)

var _ = Describe("TransitionSubscriber", func() {
	var (
		repo    *mockRepository
		bus     *events.EventBus
		testLog *slog.Logger
	)

	BeforeEach(func() {
		testLog = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = &mockRepository{}
		svc := audit.NewService(repo, newMockDirectory(), testLog)

		bus = events.NewEventBus(testLog)
		bus.Subscribe(events.EventTypeTransition, audit.TransitionSubscriber(svc))
	})

	It("records a transition as a system entry", func() {
		event := events.NewTransitionEvent(authz.EntityLeaveRequest, 7, 1, workflow.StatusPending, workflow.StatusApproved, 102)
		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.entries).To(HaveLen(1))
		entry := repo.entries[0]
		Expect(entry.OrgID).To(Equal(int64(1)))
		Expect(entry.ActorID).To(Equal(int64(0)))
		Expect(entry.ActorName).To(Equal("system"))
		Expect(entry.EntityType).To(Equal(authz.EntityLeaveRequest))
		Expect(entry.EntityID).To(Equal(int64(7)))
		Expect(entry.Action).To(Equal("workflow_transitioned"))
		Expect(string(entry.Metadata)).To(ContainSubstring(workflow.StatusApproved))
	})

	It("labels a paid expense after the journal it posted", func() {
		event := events.NewTransitionEvent(authz.EntityExpense, 42, 1, workflow.StatusApproved, workflow.StatusPaid, 103)
		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.entries).To(HaveLen(1))
		Expect(repo.entries[0].Action).To(Equal("journal_posted"))
		Expect(repo.entries[0].EntityID).To(Equal(int64(42)))
	})

	It("rejects a malformed payload", func() {
		Expect(bus.PublishSync(context.Background(), opaqueEvent{})).NotTo(Succeed())
		Expect(repo.entries).To(BeEmpty())
	})
})

// Event whose payload is not the transition map
type opaqueEvent struct{}

func (opaqueEvent) EventType() string     { return events.EventTypeTransition }
func (opaqueEvent) EventID() string       { return "evt-opaque" }
func (opaqueEvent) OccurredAt() time.Time { return time.Time{} }
func (opaqueEvent) Payload() interface{}  { return "not-a-map" }
