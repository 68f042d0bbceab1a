package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// PostExpense records the payment of an expense as a balanced journal.
// Posting is idempotent on (source_type, source_id): a journal that already
// exists for the expense is a no-op, not an error, so a retried paid
// transition cannot double-post.
func (s *Service) PostExpense(ctx context.Context, orgID, expenseID, amount, postedBy int64, description string) error {
	if existing, err := s.repo.GetBySource(authz.EntityExpense, expenseID); err == nil && existing != nil {
		s.logger.Info("journal already posted for expense, skipping",
			"expense_id", expenseID,
			"journal_id", existing.ID)
		return nil
	}

	journal := &Journal{
		OrgID:       orgID,
		SourceType:  authz.EntityExpense,
		SourceID:    expenseID,
		Description: fmt.Sprintf("expense payment: %s", description),
		Status:      JournalStatusPosted,
		PostedBy:    postedBy,
		PostedAt:    time.Now(),
		Lines: []JournalLine{
			{Account: AccountExpense, Debit: amount},
			{Account: AccountAccountPayable, Credit: amount},
		},
	}

	if err := s.repo.Create(journal); err != nil {
		// A concurrent writer won the unique (source_type, source_id) race;
		// the posting happened exactly once either way.
		var appErr *internal.AppError
		if errors.As(err, &appErr) && appErr.Code == internal.ErrCodeDuplicateRecord {
			s.logger.Info("concurrent journal post detected, skipping", "expense_id", expenseID)
			return nil
		}
		s.logger.Error("journal post failed", "expense_id", expenseID, "error", err)
		return err
	}

	s.logger.Info("journal posted",
		"journal_id", journal.ID,
		"expense_id", expenseID,
		"amount", amount)

	return nil
}

// Reverse posts a compensating journal for a correction. The original entry
// is never mutated; its status flips to reversed only after the
// compensating lines exist.
func (s *Service) Reverse(ctx context.Context, sourceType string, sourceID, actorID int64, reason string) error {
	original, err := s.repo.GetBySource(sourceType, sourceID)
	if err != nil {
		return err
	}
	if original.Status == JournalStatusReversed {
		return internal.ErrInvalidTransition
	}

	reversal := &Journal{
		OrgID:       original.OrgID,
		SourceType:  sourceType + "_reversal",
		SourceID:    sourceID,
		Description: fmt.Sprintf("reversal of journal %d: %s", original.ID, reason),
		Status:      JournalStatusPosted,
		PostedBy:    actorID,
		PostedAt:    time.Now(),
	}
	for _, line := range original.Lines {
		reversal.Lines = append(reversal.Lines, JournalLine{
			Account: line.Account,
			Debit:   line.Credit,
			Credit:  line.Debit,
		})
	}

	if err := s.repo.Create(reversal); err != nil {
		return err
	}

	if err := s.repo.MarkReversed(original.ID); err != nil {
		s.logger.Error("failed to mark journal reversed", "journal_id", original.ID, "error", err)
		return err
	}

	s.logger.Info("journal reversed", "journal_id", original.ID, "reversal_id", reversal.ID)
	return nil
}
