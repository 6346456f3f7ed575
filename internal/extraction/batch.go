package extraction

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ocrasesorias/facturas/internal/invoice"
)

const (
	maxBatchLimit = 500
	maxLanes      = 10
)

// BatchOptions control how much of an upload is processed and with how many
// lanes. Zero values mean "all invoices" and one lane.
type BatchOptions struct {
	Limit       int
	Concurrency int
}

type Failure struct {
	InvoiceID uuid.UUID
	Error     string
}

type BatchResult struct {
	Total     int
	Succeeded int
	Failures  []Failure
}

// ExtractUpload runs the workflow over one upload's invoices, oldest first.
// Lanes claim ids from a shared queue, so uneven per-invoice latency never
// starves or duplicates work, and one invoice's failure never cancels its
// siblings. It returns only after every claimed invoice is terminal.
func (s *Service) ExtractUpload(ctx context.Context, orgID, userID, uploadID uuid.UUID, opts BatchOptions) (*BatchResult, error) {
	if !s.extractor.Available() {
		return nil, ErrNotConfigured
	}

	up, err := s.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	if up.OrgID != orgID {
		return nil, invoice.ErrForbidden
	}

	// A zero limit means the whole upload; explicit values clamp to [1,500].
	limit := opts.Limit
	if limit < 0 {
		limit = 1
	}

	if limit > maxBatchLimit {
		limit = maxBatchLimit
	}

	lanes := opts.Concurrency
	if lanes < 1 {
		lanes = 1
	}

	if lanes > maxLanes {
		lanes = maxLanes
	}

	invs, err := s.repo.ListByUpload(ctx, uploadID, limit)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Total: len(invs)}

	if len(invs) == 0 {
		return result, nil
	}

	if lanes > len(invs) {
		lanes = len(invs)
	}

	var (
		next atomic.Int64
		mu   sync.Mutex
		wg   sync.WaitGroup
	)

	for lane := 0; lane < lanes; lane++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				i := int(next.Add(1)) - 1
				if i >= len(invs) {
					return
				}

				inv := invs[i]

				_, err := s.ExtractInvoice(ctx, orgID, userID, inv.ID, "")

				mu.Lock()
				if err != nil {
					result.Failures = append(result.Failures, Failure{
						InvoiceID: inv.ID,
						Error:     err.Error(),
					})
				} else {
					result.Succeeded++
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	return result, nil
}
