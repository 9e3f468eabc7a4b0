package errors

import (
	stdErrors "errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const maxChainDepth = 10

// Diagnosis is the log-only view of a failed request. None of it reaches the
// client body.
type Diagnosis struct {
	Message string
	Code    Code
	Chain   []string
	DB      *DBFault
}

// DBFault is driver detail from Postgres (pgx or lib/pq) or the sqlite
// driver used by local runs and tests.
type DBFault struct {
	Driver     string
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
}

// Diagnose walks err, including joined errors, breadth first up to
// maxChainDepth entries.
func Diagnose(err error) Diagnosis {
	if err == nil {
		return Diagnosis{}
	}
	d := Diagnosis{Message: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}

	queue := []error{err}
	for len(queue) > 0 && len(d.Chain) < maxChainDepth {
		e := queue[0]
		queue = queue[1:]
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			if next := u.Unwrap(); next != nil {
				queue = append(queue, next)
			}
		case interface{ Unwrap() []error }:
			for _, next := range u.Unwrap() {
				if next != nil {
					queue = append(queue, next)
				}
			}
		}
	}

	d.DB = dbFault(err)
	return d
}

func dbFault(err error) *DBFault {
	var pgxErr *pgconn.PgError
	if stdErrors.As(err, &pgxErr) {
		return &DBFault{
			Driver:     "pgx",
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
		}
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return &DBFault{
			Driver:     "pq",
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
		}
	}
	var liteErr sqlite3.Error
	if stdErrors.As(err, &liteErr) {
		return &DBFault{
			Driver:   "sqlite",
			SQLState: strconv.Itoa(int(liteErr.ExtendedCode)),
			Detail:   liteErr.Error(),
		}
	}
	return nil
}

// Fields flattens the diagnosis into structured log fields.
func (d Diagnosis) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.Message,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if d.DB != nil {
		fields["db_driver"] = d.DB.Driver
		fields["db_sqlstate"] = d.DB.SQLState
		if d.DB.Constraint != "" {
			fields["db_constraint"] = d.DB.Constraint
		}
		if d.DB.Table != "" {
			fields["db_table"] = d.DB.Table
		}
		if d.DB.Detail != "" {
			fields["db_detail"] = d.DB.Detail
		}
	}
	return fields
}
