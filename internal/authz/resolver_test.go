package authz_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
)

var _ = Describe("Resolver", func() {
	var (
		dir      *mockDirectory
		resolver *authz.Resolver
	)

	manager := func(id int64) *int64 { return &id }

	BeforeEach(func() {
		dir = newMockDirectory()
		resolver = authz.NewResolver(dir, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))

		// org 1: bob (profile 2) manages alice (profile 1); carol (profile 3)
		// manages bob
		dir.addProfile(&directory.Profile{ID: 1, OrgID: 1, UserID: 101, FullName: "Alice", Status: "active", ManagerID: manager(2)})
		dir.addProfile(&directory.Profile{ID: 2, OrgID: 1, UserID: 102, FullName: "Bob", Status: "active", ManagerID: manager(3)})
		dir.addProfile(&directory.Profile{ID: 3, OrgID: 1, UserID: 103, FullName: "Carol", Status: "active"})
		dir.roles[102] = []string{directory.RoleManager}
		dir.roles[103] = []string{directory.RoleManager}
	})

	Describe("ActorFor", func() {
		It("builds an actor scoped to the profile's org", func() {
			actor, err := resolver.ActorFor(102)

			Expect(err).ToNot(HaveOccurred())
			Expect(actor.ProfileID).To(Equal(int64(2)))
			Expect(actor.OrgID).To(Equal(int64(1)))
			Expect(actor.Name).To(Equal("Bob"))
			Expect(actor.Has(authz.CapManager)).To(BeTrue())
			Expect(actor.Has(authz.CapAdmin)).To(BeFalse())
		})

		It("fails for a user without a profile", func() {
			_, err := resolver.ActorFor(999)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ManagerOf", func() {
		It("recognizes the direct manager", func() {
			Expect(resolver.ManagerOf(2, 1)).To(BeTrue())
		})

		It("walks exactly one level: a manager's manager gains nothing", func() {
			Expect(resolver.ManagerOf(3, 1)).To(BeFalse())
		})

		It("never lets a profile manage itself", func() {
			Expect(resolver.ManagerOf(1, 1)).To(BeFalse())
		})

		It("denies when the target cannot be loaded", func() {
			Expect(resolver.ManagerOf(2, 999)).To(BeFalse())
		})
	})

	Describe("HasCapability", func() {
		It("treats lookup failures as deny, not error", func() {
			dir.rolesError = errAny
			Expect(resolver.HasCapability(102, 1, authz.CapManager)).To(BeFalse())
		})

		It("denies an inactive profile", func() {
			dir.addProfile(&directory.Profile{ID: 4, OrgID: 1, UserID: 104, FullName: "Dan", Status: "inactive"})
			dir.roles[104] = []string{directory.RoleAdmin}
			Expect(resolver.HasCapability(104, 1, authz.CapAdmin)).To(BeFalse())
		})

		It("denies across org boundaries", func() {
			Expect(resolver.HasCapability(102, 2, authz.CapManager)).To(BeFalse())
		})

		It("derives org membership from the profile alone", func() {
			Expect(resolver.HasCapability(101, 1, authz.CapOrgMember)).To(BeTrue())
		})
	})
})
