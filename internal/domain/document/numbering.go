package document

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Period is the calendar scope of one number sequence. Sequences restart per
// (tenant, type, period) key.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// String returns the period as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// FormatNumber renders the reference string <PREFIX>-<YY>-<MM>-<NNNN>.
// This format is the one bit-exact contract external reporting depends on:
// fixed per-type prefix, two-digit year and month, sequence zero-padded to
// four digits and widening (never wrapping) beyond 9999.
func FormatNumber(docType DocumentType, period Period, seq int64) string {
	return fmt.Sprintf("%s-%02d-%02d-%04d", docType.Prefix(), period.Year%100, int(period.Month), seq)
}

// NumberSequenceRepository is the persistence port for the atomic per-key
// counters. Next must increment and return as one atomic operation, safe
// under concurrent issuance; a read-then-write of the counter is not an
// acceptable implementation.
type NumberSequenceRepository interface {
	Next(ctx context.Context, tenantID uuid.UUID, docType DocumentType, period Period) (int64, error)
}

// NumberingAuthority issues unique, strictly increasing reference numbers
// per (tenant, type, period). Issued numbers are never reused, even when the
// document that consumed one is later deleted.
type NumberingAuthority struct {
	sequences NumberSequenceRepository
}

// NewNumberingAuthority creates a numbering authority over the given sequence store
func NewNumberingAuthority(sequences NumberSequenceRepository) *NumberingAuthority {
	return &NumberingAuthority{sequences: sequences}
}

// NextNumber issues the next reference for the key. Fails with
// NUMBERING_EXHAUSTED only on counter overflow, a defined outcome rather
// than silent wraparound.
func (a *NumberingAuthority) NextNumber(ctx context.Context, tenantID uuid.UUID, docType DocumentType, period Period) (string, error) {
	if !docType.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid document type %s", docType))
	}

	seq, err := a.sequences.Next(ctx, tenantID, docType, period)
	if err != nil {
		return "", err
	}
	if seq <= 0 || seq == math.MaxInt64 {
		return "", shared.NewDomainError(shared.CodeNumberingExhausted,
			fmt.Sprintf("Number sequence exhausted for %s in period %s", docType, period))
	}
	return FormatNumber(docType, period, seq), nil
}
