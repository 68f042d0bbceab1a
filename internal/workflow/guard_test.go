package workflow_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
	"github.com/peoplekit/hrcore/internal/workflow"
)

var _ = Describe("DeleteGuard", func() {
	var (
		guard   *workflow.DeleteGuard
		auditor *mockAuditor
	)

	admin := authz.NewActor(1, 10, 1, "admin", []string{directory.RoleAdmin})
	hr := authz.NewActor(2, 20, 1, "hr", []string{directory.RoleHR})

	BeforeEach(func() {
		auditor = &mockAuditor{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		guard = workflow.NewDeleteGuard(auditor, logger)
	})

	Describe("CheckDelete", func() {
		It("always passes mutable records", func() {
			Expect(guard.CheckDelete(false)).To(Succeed())
		})

		It("blocks immutable records outside an override window", func() {
			Expect(guard.CheckDelete(true)).To(MatchError(internal.ErrDeleteBlocked))
		})
	})

	Describe("WithOverride", func() {
		It("refuses non-admin actors before touching the toggle", func() {
			called := false
			err := guard.WithOverride(context.Background(), hr, "cleanup", func() error {
				called = true
				return nil
			})
			Expect(err).To(HaveOccurred())
			Expect(called).To(BeFalse())
			Expect(auditor.recorded()).To(BeEmpty())
		})

		It("refuses a nil actor", func() {
			err := guard.WithOverride(context.Background(), nil, "cleanup", func() error { return nil })
			Expect(err).To(HaveOccurred())
		})

		It("allows immutable deletion only inside the window", func() {
			err := guard.WithOverride(context.Background(), admin, "duplicate import", func() error {
				return guard.CheckDelete(true)
			})
			Expect(err).ToNot(HaveOccurred())

			// window closed again
			Expect(guard.CheckDelete(true)).To(MatchError(internal.ErrDeleteBlocked))
		})

		It("records begin and end around the correction", func() {
			err := guard.WithOverride(context.Background(), admin, "duplicate import", func() error { return nil })
			Expect(err).ToNot(HaveOccurred())
			Expect(auditor.recorded()).To(Equal([]string{"delete_override_begin", "delete_override_end"}))
		})

		It("releases the toggle and records the end even when the correction fails", func() {
			boom := errors.New("correction failed")
			err := guard.WithOverride(context.Background(), admin, "duplicate import", func() error { return boom })
			Expect(err).To(MatchError(boom))

			Expect(guard.CheckDelete(true)).To(MatchError(internal.ErrDeleteBlocked))
			Expect(auditor.recorded()).To(Equal([]string{"delete_override_begin", "delete_override_end"}))
		})
	})
})
