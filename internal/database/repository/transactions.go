package repository

import (
	"context"
	"database/sql"
	"strings"
)

// TransactionFilters defines list filters.
type TransactionFilters struct {
	Month    string // YYYY-MM; empty = no month filter
	Category string
	Type     TxType
	GroupID  string
	Search   string // substring match on note
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txColumns = `id, date, category, amount, type, tag, note, group_id, invest_source,
 from_savings, from_emergency, asset_liquidation, created_at, updated_at`

// Insert stores a transaction and returns the id the store assigned to it.
func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 date, category, amount, type, tag, note, group_id, invest_source,
	 from_savings, from_emergency, asset_liquidation, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.Date, t.Category, t.Amount, t.Type, t.Tag, t.Note, t.GroupID,
		nullableSource(t.InvestSource), t.FromSavings, t.FromEmergency, t.AssetLiquidation)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update rewrites every user-editable column of the row.
func (r *TransactionRepo) Update(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET
	 date = ?, category = ?, amount = ?, type = ?, tag = ?, note = ?,
	 invest_source = ?, from_savings = ?, from_emergency = ?, asset_liquidation = ?,
	 updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`,
		t.Date, t.Category, t.Amount, t.Type, t.Tag, t.Note,
		nullableSource(t.InvestSource), t.FromSavings, t.FromEmergency, t.AssetLiquidation, t.ID)
	return err
}

// Delete removes a single row. Cohort siblings are left alone on purpose.
func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// All returns every transaction in chronological order, the aggregator's
// expected input order.
func (r *TransactionRepo) All(ctx context.Context) ([]Transaction, error) {
	return r.list(ctx, `SELECT `+txColumns+` FROM transactions ORDER BY date ASC, id ASC`)
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []interface{}

	if f.Month != "" {
		where = append(where, "strftime('%Y-%m', date) = ?")
		args = append(args, f.Month)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.Search != "" {
		where = append(where, "note LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := `SELECT ` + txColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"
	return r.list(ctx, query, args...)
}

// ByGroup returns an installment cohort in chronological order.
func (r *TransactionRepo) ByGroup(ctx context.Context, groupID string) ([]Transaction, error) {
	return r.list(ctx, `SELECT `+txColumns+` FROM transactions WHERE group_id = ? ORDER BY date ASC, id ASC`, groupID)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullableSource(s InvestSource) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

// scanTransaction handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var group, source sql.NullString
	if err := row.Scan(&t.ID, &t.Date, &t.Category, &t.Amount, &t.Type, &t.Tag, &t.Note,
		&group, &source, &t.FromSavings, &t.FromEmergency, &t.AssetLiquidation,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	if group.Valid {
		t.GroupID = &group.String
	}
	if source.Valid {
		t.InvestSource = InvestSource(source.String)
	}
	return t, nil
}
