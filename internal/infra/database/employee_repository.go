package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/crm-sync/internal/entity"
)

type EmployeeRepository struct {
	DB *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) Upsert(ctx context.Context, employees []entity.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO employee (employee_id, name, email, department, country, business_partner_id, kind, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (employee_id) DO UPDATE SET
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				department = EXCLUDED.department,
				country = EXCLUDED.country,
				business_partner_id = EXCLUDED.business_partner_id,
				kind = EXCLUDED.kind,
				updated_at = NOW()`)
		if err != nil {
			return wrapPQ("prepare employee upsert", err)
		}
		defer stmt.Close()

		for _, e := range employees {
			kind := e.Kind
			if kind == "" {
				kind = entity.EmployeeKindEmployee
			}
			if _, err := stmt.ExecContext(ctx,
				e.EmployeeID,
				e.Name,
				e.Email,
				e.Department,
				e.Country,
				e.BusinessPartnerID,
				string(kind),
			); err != nil {
				return wrapPQ("upsert employee", err)
			}
		}
		return nil
	})
}

func (r *EmployeeRepository) ListAll(ctx context.Context) ([]entity.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT employee_id, name, email, department, country, business_partner_id, kind
		FROM employee
		ORDER BY employee_id`)
	if err != nil {
		return nil, wrapPQ("select employees", err)
	}
	defer rows.Close()

	var out []entity.Employee
	for rows.Next() {
		var (
			e    entity.Employee
			kind string
		)
		if err := rows.Scan(&e.EmployeeID, &e.Name, &e.Email, &e.Department, &e.Country, &e.BusinessPartnerID, &kind); err != nil {
			return nil, wrapPQ("scan employee", err)
		}
		e.Kind = entity.EmployeeKind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPQ("iterate employees", err)
	}
	return out, nil
}
