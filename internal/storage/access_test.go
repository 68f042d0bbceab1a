package storage_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
	"github.com/peoplekit/hrcore/internal/storage"
)

var _ = Describe("ObjectKey", func() {
	Describe("NewObjectKey", func() {
		It("builds an owner-prefixed key", func() {
			key, err := storage.NewObjectKey(authz.EntityExpense, 42, "receipt.pdf")
			Expect(err).ToNot(HaveOccurred())
			Expect(key.String()).To(Equal("expense/42/receipt.pdf"))
		})

		It("rejects path traversal in the filename", func() {
			_, err := storage.NewObjectKey(authz.EntityExpense, 42, "../other/receipt.pdf")
			Expect(err).To(HaveOccurred())

			_, err = storage.NewObjectKey(authz.EntityExpense, 42, "nested/receipt.pdf")
			Expect(err).To(HaveOccurred())
		})

		It("rejects entity types without attachments", func() {
			_, err := storage.NewObjectKey(authz.EntityLeaveRequest, 42, "receipt.pdf")
			Expect(err).To(HaveOccurred())
		})

		It("rejects a zero owner", func() {
			_, err := storage.NewObjectKey(authz.EntityExpense, 0, "receipt.pdf")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParseKey", func() {
		It("round-trips a valid key", func() {
			key, err := storage.ParseKey("form16/7/fy2025-26.pdf")
			Expect(err).ToNot(HaveOccurred())
			Expect(key.EntityType).To(Equal(authz.EntityForm16))
			Expect(key.OwnerProfileID).To(Equal(int64(7)))
			Expect(key.Filename).To(Equal("fy2025-26.pdf"))
		})

		It("rejects malformed keys", func() {
			for _, raw := range []string{"", "expense", "expense/42", "expense/abc/receipt.pdf", "expense/0/receipt.pdf"} {
				_, err := storage.ParseKey(raw)
				Expect(err).To(HaveOccurred(), "key %q should not parse", raw)
			}
		})
	})
})

var _ = Describe("AccessPolicy", func() {
	var policy *storage.AccessPolicy

	owner := authz.NewActor(101, 1, 1, "Asha", nil)
	stranger := authz.NewActor(104, 4, 1, "Dev", nil)

	expenseResource := authz.Resource{
		Type:           authz.EntityExpense,
		ID:             9,
		OwnerProfileID: 1,
		OrgID:          1,
		Status:         "submitted",
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		dir := newMockDirectory()
		dir.addProfile(&directory.Profile{ID: 1, OrgID: 1, UserID: 101, FullName: "Asha", Status: "active"})
		policy = storage.NewAccessPolicy(authz.NewGate(authz.NewResolver(dir, logger), logger))
	})

	It("grants the blob exactly the entity's visibility", func() {
		key, err := storage.NewObjectKey(authz.EntityExpense, 1, "receipt.pdf")
		Expect(err).ToNot(HaveOccurred())

		Expect(policy.Can(owner, authz.ActionRead, key, expenseResource).Allowed).To(BeTrue())
		Expect(policy.Can(stranger, authz.ActionRead, key, expenseResource).Allowed).To(BeFalse())
	})

	It("denies a key forged to point at another owner's folder", func() {
		forged, err := storage.NewObjectKey(authz.EntityExpense, 4, "receipt.pdf")
		Expect(err).ToNot(HaveOccurred())

		decision := policy.Can(stranger, authz.ActionRead, forged, expenseResource)
		Expect(decision.Allowed).To(BeFalse())
		Expect(decision.Reason).To(Equal(authz.DenyNotOwner))
	})

	It("denies a key whose entity type disagrees with the owning record", func() {
		key, err := storage.NewObjectKey(authz.EntityMemo, 1, "receipt.pdf")
		Expect(err).ToNot(HaveOccurred())

		decision := policy.Can(owner, authz.ActionRead, key, expenseResource)
		Expect(decision.Allowed).To(BeFalse())
	})
})
