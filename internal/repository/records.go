package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mkjeong/leadnet/internal/model"
)

// SearchFilters holds per-field substring terms for the multi-field OR
// search. Blank terms are ignored; a record matches when ANY non-blank term
// is a case-insensitive substring of its own field.
type SearchFilters struct {
	Name        string
	Phone       string
	IncomePath  string
	CreatorName string
	Manager     string
}

func (f SearchFilters) Empty() bool {
	return f.Name == "" && f.Phone == "" && f.IncomePath == "" &&
		f.CreatorName == "" && f.Manager == ""
}

// RecordFilter is the full listing predicate: an optional manager scope, an
// optional type equality, and an optional OR search. List and Count evaluate
// the same predicate so a page's total always matches its filter.
type RecordFilter struct {
	Scoped   bool     // restrict to Managers when true
	Managers []string // usernames; may contain "" for the unassigned bucket
	Type     model.RecordType
	Search   *SearchFilters
}

// RecordsRepository defines persistence for the records table.
type RecordsRepository interface {
	Insert(ctx context.Context, rec model.Record) error
	GetByID(ctx context.Context, id string) (*model.Record, error)
	GetByPhone(ctx context.Context, phone string) (*model.Record, error)
	Save(ctx context.Context, rec model.Record) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f RecordFilter, limit, offset int) ([]model.Record, error)
	Count(ctx context.Context, f RecordFilter) (int64, error)
	ListPhoneRows(ctx context.Context) ([]PhoneRow, error)
	UpdatePhone(ctx context.Context, id, phone string) error
}

type RecordsRepositoryImpl struct {
	db *sqlx.DB
}

func NewRecordsRepository(db *sqlx.DB) *RecordsRepositoryImpl {
	return &RecordsRepositoryImpl{db: db}
}

var _ RecordsRepository = (*RecordsRepositoryImpl)(nil)

const recordColumns = "id, name, phonenumber, sex, incomepath, creatorname, memo, `type`, manager, incomedate, created_at, updated_at"

// buildWhere renders RecordFilter into a WHERE clause with `?` bindvars.
// A scoped filter with no managers yields a never-matching predicate.
func buildWhere(f RecordFilter) (string, []any, error) {
	var conds []string
	var args []any

	if f.Scoped {
		if len(f.Managers) == 0 {
			return " WHERE 1 = 0", nil, nil
		}
		cond, inArgs, err := sqlx.In("manager IN (?)", f.Managers)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, cond)
		args = append(args, inArgs...)
	}

	if f.Type != "" {
		conds = append(conds, "`type` = ?")
		args = append(args, f.Type.String())
	}

	if f.Search != nil && !f.Search.Empty() {
		var ors []string
		like := func(column, term string) {
			if term == "" {
				return
			}
			ors = append(ors, "LOWER("+column+") LIKE ?")
			args = append(args, "%"+strings.ToLower(term)+"%")
		}
		like("name", f.Search.Name)
		like("phonenumber", f.Search.Phone)
		like("incomepath", f.Search.IncomePath)
		like("creatorname", f.Search.CreatorName)
		like("manager", f.Search.Manager)
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (r *RecordsRepositoryImpl) Insert(ctx context.Context, rec model.Record) error {
	const q = `
		INSERT INTO records
		    (id, name, phonenumber, sex, incomepath, creatorname, memo, ` + "`type`" + `, manager, incomedate, created_at, updated_at)
		VALUES
		    (?,  ?,    ?,           ?,   ?,          ?,           ?,    ?,      ?,       ?,          NOW(),      NOW())
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.Name, rec.PhoneNumber, rec.Sex, rec.IncomePath,
		rec.CreatorName, rec.Memo, rec.Type.String(), rec.Manager, rec.IncomeDate,
	)
	return err
}

func (r *RecordsRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Record, error) {
	var rec model.Record
	err := r.db.GetContext(ctx, &rec, `
		SELECT `+recordColumns+`
		  FROM records
		 WHERE id = ? LIMIT 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByPhone looks up by the unique normalized phone number.
func (r *RecordsRepositoryImpl) GetByPhone(ctx context.Context, phone string) (*model.Record, error) {
	var rec model.Record
	err := r.db.GetContext(ctx, &rec, `
		SELECT `+recordColumns+`
		  FROM records
		 WHERE phonenumber = ? LIMIT 1
	`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save persists the full row for the record's id.
func (r *RecordsRepositoryImpl) Save(ctx context.Context, rec model.Record) error {
	const q = `
		UPDATE records
		   SET name = ?, phonenumber = ?, sex = ?, incomepath = ?,
		       creatorname = ?, memo = ?, ` + "`type`" + ` = ?, manager = ?,
		       incomedate = ?, updated_at = NOW()
		 WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.Name, rec.PhoneNumber, rec.Sex, rec.IncomePath,
		rec.CreatorName, rec.Memo, rec.Type.String(), rec.Manager,
		rec.IncomeDate, rec.ID,
	)
	return err
}

func (r *RecordsRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// List returns one page of the filtered records, newest first.
func (r *RecordsRepositoryImpl) List(ctx context.Context, f RecordFilter, limit, offset int) ([]model.Record, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + recordColumns + ` FROM records` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	query = r.db.Rebind(query)

	recs := []model.Record{}
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

// Count evaluates the same predicate as List without pagination.
func (r *RecordsRepositoryImpl) Count(ctx context.Context, f RecordFilter) (int64, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return 0, err
	}
	query := r.db.Rebind(`SELECT COUNT(*) FROM records` + where)

	var n int64
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// PhoneRow is the projection walked by the one-time renormalization pass.
type PhoneRow struct {
	ID          string `db:"id"`
	PhoneNumber string `db:"phonenumber"`
}

func (r *RecordsRepositoryImpl) ListPhoneRows(ctx context.Context) ([]PhoneRow, error) {
	rows := []PhoneRow{}
	err := r.db.SelectContext(ctx, &rows, `SELECT id, phonenumber FROM records ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RecordsRepositoryImpl) UpdatePhone(ctx context.Context, id, phone string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE records SET phonenumber = ?, updated_at = NOW() WHERE id = ?`, phone, id)
	return err
}
