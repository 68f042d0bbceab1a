package profilechange_test

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
	"github.com/peoplekit/hrcore/internal/profilechange"
	"github.com/peoplekit/hrcore/internal/workflow"
)

var _ = Describe("ProfileChange Service", func() {
	var (
		repo     *mockRepository
		profiles *mockProfileUpdater
		recorder *mockRecorder
		svc      *profilechange.Service

		alice *authz.Actor
		hr    *authz.Actor
	)

	bobID := int64(2)

	submit := func(changes map[string]string) *profilechange.ChangeRequest {
		req, err := svc.SubmitRequest(context.Background(), alice, profilechange.CreateChangeRequestDTO{Changes: changes})
		Expect(err).ToNot(HaveOccurred())
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
		profiles = newMockProfileUpdater()
		recorder = &mockRecorder{}
		svc = profilechange.NewService(repo, gate, engine, profiles, recorder, logger)

		alice = authz.NewActor(101, 1, 1, "Alice", nil)
		hr = authz.NewActor(103, 3, 1, "Meera", []string{directory.RoleHR})
	})

	Describe("SubmitRequest", func() {
		It("records the requested field changes as pending", func() {
			req := submit(map[string]string{"full_name": "Alice K"})
			Expect(req.Status).To(Equal(workflow.StatusPending))

			fields, err := req.FieldChanges()
			Expect(err).ToNot(HaveOccurred())
			Expect(fields).To(HaveKeyWithValue("full_name", "Alice K"))
			Expect(recorder.actions).To(ContainElement("profile_change_submitted"))
		})

		It("rejects fields outside the allowed set", func() {
			_, err := svc.SubmitRequest(context.Background(), alice, profilechange.CreateChangeRequestDTO{
				Changes: map[string]string{"salary": "9999999"},
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an empty change set", func() {
			_, err := svc.SubmitRequest(context.Background(), alice, profilechange.CreateChangeRequestDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Transition", func() {
		It("applies the change set to the profile on approval", func() {
			req := submit(map[string]string{"full_name": "Alice K", "email": "alice.k@example.com"})

			updated, err := svc.Transition(context.Background(), hr, req.ID, workflow.ActionApprove, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(workflow.StatusApproved))

			Expect(profiles.applied).To(HaveKey(int64(1)))
			Expect(profiles.applied[1]).To(HaveKeyWithValue("full_name", "Alice K"))
			Expect(profiles.applied[1]).To(HaveKeyWithValue("email", "alice.k@example.com"))
			Expect(recorder.actions).To(ContainElement("profile_change_approved"))
		})

		It("does not touch the profile on rejection", func() {
			req := submit(map[string]string{"full_name": "Alice K"})

			_, err := svc.Transition(context.Background(), hr, req.ID, workflow.ActionReject, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(profiles.applied).To(BeEmpty())
		})

		It("surfaces a failed profile update", func() {
			req := submit(map[string]string{"full_name": "Alice K"})
			profiles.updateError = errors.New("profile row locked")

			_, err := svc.Transition(context.Background(), hr, req.ID, workflow.ActionApprove, nil)
			Expect(err).To(HaveOccurred())
		})

		It("refuses approval by the requester", func() {
			req := submit(map[string]string{"full_name": "Alice K"})

			_, err := svc.Transition(context.Background(), alice, req.ID, workflow.ActionApprove, nil)
			Expect(err).To(HaveOccurred())
			Expect(profiles.applied).To(BeEmpty())
		})

		It("refuses a second decision on the same request", func() {
			req := submit(map[string]string{"full_name": "Alice K"})

			_, err := svc.Transition(context.Background(), hr, req.ID, workflow.ActionApprove, nil)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Transition(context.Background(), hr, req.ID, workflow.ActionReject, nil)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})
	})
})
