package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

const pgErrUniqueViolation = "23505"

// SnapshotRepository implements usecase.SnapshotRepository. The snapshot
// bundles (net balances, pairwise debts, transfers) are stored as JSONB
// documents; they are written once and only ever read back whole.
type SnapshotRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, retrier: NewRetrier()}
}

// Save persists a snapshot, rejecting writes from stale ledger versions. A
// snapshot for the same trip with an equal or newer source ledger version
// wins; the caller gets domain.ErrStaleSnapshot and should read back Latest.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *domain.SettlementSnapshot) error {
	netBalances, pairwiseDebts, transfers, err := marshalSnapshotDocs(snapshot)
	if err != nil {
		return err
	}

	return r.retrier.Retry(ctx, func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		var latest int64
		err = tx.QueryRow(ctx, `
			SELECT source_ledger_version
			FROM settlement_snapshots
			WHERE trip_id = $1
			ORDER BY source_ledger_version DESC
			LIMIT 1
		`, snapshot.TripID).Scan(&latest)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err == nil && latest >= snapshot.SourceLedgerVersion {
			return domain.ErrStaleSnapshot
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO settlement_snapshots
				(id, trip_id, source_ledger_version, base_currency, net_balances, pairwise_debts, transfers, computed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			snapshot.ID,
			snapshot.TripID,
			snapshot.SourceLedgerVersion,
			snapshot.BaseCurrency,
			netBalances,
			pairwiseDebts,
			transfers,
			snapshot.ComputedAt,
		)
		if err != nil {
			// Two concurrent saves of the same version: the loser sees the
			// unique constraint, which is the stale case.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
				return domain.ErrStaleSnapshot
			}
			return err
		}

		return tx.Commit(ctx)
	})
}

// Latest returns the trip's snapshot with the highest source ledger version.
func (r *SnapshotRepository) Latest(ctx context.Context, tripID string) (*domain.SettlementSnapshot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, trip_id, source_ledger_version, base_currency, net_balances, pairwise_debts, transfers, computed_at
		FROM settlement_snapshots
		WHERE trip_id = $1
		ORDER BY source_ledger_version DESC
		LIMIT 1
	`, tripID)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}

	return snapshot, err
}

// History lists stored snapshots for a trip, newest first.
func (r *SnapshotRepository) History(ctx context.Context, tripID string, limit, offset int) ([]*domain.SettlementSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, trip_id, source_ledger_version, base_currency, net_balances, pairwise_debts, transfers, computed_at
		FROM settlement_snapshots
		WHERE trip_id = $1
		ORDER BY source_ledger_version DESC
		LIMIT $2 OFFSET $3
	`, tripID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.SettlementSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// JSONB document shapes. Kept separate from the domain types so the stored
// format does not silently change with domain refactors.
type netBalanceDoc struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type pairwiseDebtDoc struct {
	DebtorID   string          `json:"debtor_id"`
	CreditorID string          `json:"creditor_id"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
}

type transferDoc struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func marshalSnapshotDocs(s *domain.SettlementSnapshot) ([]byte, []byte, []byte, error) {
	netDocs := make([]netBalanceDoc, len(s.NetBalances))
	for i, b := range s.NetBalances {
		netDocs[i] = netBalanceDoc{ParticipantID: b.ParticipantID, Amount: b.Amount}
	}

	debtDocs := make([]pairwiseDebtDoc, len(s.PairwiseDebts))
	for i, d := range s.PairwiseDebts {
		debtDocs[i] = pairwiseDebtDoc{DebtorID: d.DebtorID, CreditorID: d.CreditorID, Currency: d.Currency, Amount: d.Amount}
	}

	transferDocs := make([]transferDoc, len(s.Transfers))
	for i, t := range s.Transfers {
		transferDocs[i] = transferDoc{From: t.FromParticipantID, To: t.ToParticipantID, Amount: t.Amount}
	}

	netJSON, err := json.Marshal(netDocs)
	if err != nil {
		return nil, nil, nil, err
	}
	debtJSON, err := json.Marshal(debtDocs)
	if err != nil {
		return nil, nil, nil, err
	}
	transferJSON, err := json.Marshal(transferDocs)
	if err != nil {
		return nil, nil, nil, err
	}

	return netJSON, debtJSON, transferJSON, nil
}

func scanSnapshot(row pgx.Row) (*domain.SettlementSnapshot, error) {
	var (
		snapshot      domain.SettlementSnapshot
		netJSON       []byte
		debtJSON      []byte
		transfersJSON []byte
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.TripID,
		&snapshot.SourceLedgerVersion,
		&snapshot.BaseCurrency,
		&netJSON,
		&debtJSON,
		&transfersJSON,
		&snapshot.ComputedAt,
	)
	if err != nil {
		return nil, err
	}

	var netDocs []netBalanceDoc
	if err := json.Unmarshal(netJSON, &netDocs); err != nil {
		return nil, err
	}
	snapshot.NetBalances = make([]domain.NetBalance, len(netDocs))
	for i, d := range netDocs {
		snapshot.NetBalances[i] = domain.NetBalance{ParticipantID: d.ParticipantID, Amount: d.Amount}
	}

	var debtDocs []pairwiseDebtDoc
	if err := json.Unmarshal(debtJSON, &debtDocs); err != nil {
		return nil, err
	}
	snapshot.PairwiseDebts = make([]domain.PairwiseDebt, len(debtDocs))
	for i, d := range debtDocs {
		snapshot.PairwiseDebts[i] = domain.PairwiseDebt{DebtorID: d.DebtorID, CreditorID: d.CreditorID, Currency: d.Currency, Amount: d.Amount}
	}

	var transferDocs []transferDoc
	if err := json.Unmarshal(transfersJSON, &transferDocs); err != nil {
		return nil, err
	}
	snapshot.Transfers = make([]domain.Transfer, len(transferDocs))
	for i, d := range transferDocs {
		snapshot.Transfers[i] = domain.Transfer{FromParticipantID: d.From, ToParticipantID: d.To, Amount: d.Amount}
	}

	return &snapshot, nil
}
