package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/paytaksi/paytaksi-backend/pkg/enums"
)

// RequestTopupInput captures a driver's balance credit request.
type RequestTopupInput struct {
	AmountCents int64             `json:"amount_cents" validate:"required,gt=0"`
	Method      enums.TopupMethod `json:"method" validate:"required"`
}

// DecideTopupInput captures an admin decision on a pending topup.
type DecideTopupInput struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note,omitempty"`
}

// AdjustInput captures a manual admin balance correction.
type AdjustInput struct {
	AmountCents int64   `json:"amount_cents" validate:"required"`
	Note        *string `json:"note,omitempty"`
}

// LedgerEntryView is the externally visible ledger row.
type LedgerEntryView struct {
	ID                uuid.UUID             `json:"id"`
	Kind              enums.LedgerEntryKind `json:"kind"`
	AmountCents       int64                 `json:"amount_cents"`
	BalanceAfterCents int64                 `json:"balance_after_cents"`
	RideID            *uuid.UUID            `json:"ride_id,omitempty"`
	TopupID           *uuid.UUID            `json:"topup_id,omitempty"`
	Note              *string               `json:"note,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// LedgerList wraps paginated ledger entries plus the next cursor.
type LedgerList struct {
	Entries    []LedgerEntryView `json:"entries"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// BalanceAudit reports the stored balance against the ledger sum.
type BalanceAudit struct {
	DriverID      uuid.UUID `json:"driver_id"`
	StoredCents   int64     `json:"stored_cents"`
	ComputedCents int64     `json:"computed_cents"`
	Consistent    bool      `json:"consistent"`
}
