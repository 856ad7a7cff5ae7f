package firestoredb

import (
	"context"

	"cleanops/internal/domain/entity"
	"cleanops/internal/domain/repository"
	"cleanops/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// documentStore implements the repository.DocumentStore interface. Each batch
// commits as one transaction, which Firestore applies atomically.
type documentStore struct {
	client *firestore.Client
}

// NewDocumentStore is the constructor for documentStore.
func NewDocumentStore(client *firestore.Client) repository.DocumentStore {
	return &documentStore{client: client}
}

func (s *documentStore) NewBatch() repository.WriteBatch {
	return &writeBatch{client: s.client}
}

type stagedWrite func(tx *firestore.Transaction) error

// payrollMerge is a staged contribution. It is applied only when the record
// does not already list the job.
type payrollMerge struct {
	ref   *firestore.DocumentRef
	docID string
	jobID string
	data  map[string]any
}

type writeBatch struct {
	client *firestore.Client
	writes []stagedWrite
	merges []payrollMerge
}

func (b *writeBatch) CreateServiceHistory(entry *entity.ServiceHistoryEntry) {
	ref := b.client.Collection(model.CollectionServiceHistory).Doc(entry.ID)
	data := fromHistoryDomain(entry)
	b.writes = append(b.writes, func(tx *firestore.Transaction) error {
		return tx.Create(ref, data)
	})
}

func (b *writeBatch) UpdateLocation(locationID string, patch entity.LocationPatch) {
	updates := locationPatchUpdates(patch)
	if len(updates) == 0 {
		return
	}
	ref := b.client.Collection(model.CollectionLocations).Doc(locationID)
	b.writes = append(b.writes, func(tx *firestore.Transaction) error {
		return tx.Update(ref, updates)
	})
}

func (b *writeBatch) UpdateServiceHistory(entryID string, patch entity.ServiceHistoryPatch) {
	updates := historyPatchUpdates(patch)
	if len(updates) == 0 {
		return
	}
	ref := b.client.Collection(model.CollectionServiceHistory).Doc(entryID)
	b.writes = append(b.writes, func(tx *firestore.Transaction) error {
		return tx.Update(ref, updates)
	})
}

func (b *writeBatch) MergeEmployeePayroll(contribution *entity.PayrollContribution) {
	docID := entity.PayrollDocID(contribution.EmployeeID, contribution.Period.ID)
	b.merges = append(b.merges, payrollMerge{
		ref:   b.client.Collection(model.CollectionPayroll).Doc(docID),
		docID: docID,
		jobID: contribution.Job.ServiceHistoryID,
		data:  contributionMergeData(contribution),
	})
}

func (b *writeBatch) Len() int {
	return len(b.writes) + len(b.merges)
}

// Commit makes a single attempt. A failed batch is reported, never retried here.
func (b *writeBatch) Commit(ctx context.Context) error {
	if b.Len() == 0 {
		return nil
	}

	err := b.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		// Firestore transactions read before they write.
		credited, err := b.creditedJobs(tx)
		if err != nil {
			return err
		}

		for _, write := range b.writes {
			if err := write(tx); err != nil {
				return err
			}
		}
		for _, merge := range pendingMerges(b.merges, credited) {
			if err := tx.Set(merge.ref, merge.data, firestore.MergeAll); err != nil {
				return err
			}
		}

		return nil
	}, batchTransactionOptions()...)
	if err != nil {
		return errors.Wrapf(err, "failed to commit batch of %d writes", b.Len())
	}

	return nil
}

func batchTransactionOptions() []firestore.TransactionOption {
	return []firestore.TransactionOption{firestore.MaxAttempts(1)}
}

// creditedJobs reads the payroll records touched by the batch and returns the
// jobs they already list, keyed by creditKey.
func (b *writeBatch) creditedJobs(tx *firestore.Transaction) (map[string]bool, error) {
	credited := make(map[string]bool)
	if len(b.merges) == 0 {
		return credited, nil
	}

	seen := make(map[string]bool, len(b.merges))
	refs := make([]*firestore.DocumentRef, 0, len(b.merges))
	for _, merge := range b.merges {
		if seen[merge.docID] {
			continue
		}
		seen[merge.docID] = true
		refs = append(refs, merge.ref)
	}

	snaps, err := tx.GetAll(refs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read payroll records")
	}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		var m model.EmployeePayrollModel
		if err := snap.DataTo(&m); err != nil {
			return nil, errors.Wrapf(err, "failed to decode payroll %s", snap.Ref.ID)
		}
		for _, job := range m.Jobs {
			credited[creditKey(snap.Ref.ID, job.ServiceHistoryID)] = true
		}
	}

	return credited, nil
}

// pendingMerges drops merges whose job is already credited, including a job
// staged twice in the same batch.
func pendingMerges(merges []payrollMerge, credited map[string]bool) []payrollMerge {
	applied := make(map[string]bool, len(credited)+len(merges))
	for key := range credited {
		applied[key] = true
	}

	out := make([]payrollMerge, 0, len(merges))
	for _, merge := range merges {
		key := creditKey(merge.docID, merge.jobID)
		if applied[key] {
			continue
		}
		applied[key] = true
		out = append(out, merge)
	}

	return out
}

func creditKey(docID, jobID string) string {
	return docID + "|" + jobID
}
