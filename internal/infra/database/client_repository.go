package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

const clientColumns = `id, lead_id, name, phone, alt_phone, whatsapp, email,
	age, occupation, qualification, experience_years,
	target_country, residing_country, program, ielts_score, source,
	assessment_authority, occupation_mapped, registration_fee_paid,
	fee_status, amount_paid, payment_due_date,
	assigned_staff_id, processing_staff_id, processing_status, completed_actions,
	created_at, updated_at`

type ClientRepository struct {
	DB *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (
			lead_id, name, phone, alt_phone, whatsapp, email,
			age, occupation, qualification, experience_years,
			target_country, residing_country, program, ielts_score, source,
			assessment_authority, occupation_mapped, registration_fee_paid,
			amount_paid, assigned_staff_id, completed_actions,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	actions, err := json.Marshal(c.CompletedActions)
	if err != nil {
		return err
	}

	return r.DB.QueryRowContext(ctx, query,
		c.LeadID,
		c.Name,
		c.Phone,
		nullString(c.AltPhone),
		nullString(c.Whatsapp),
		nullString(c.Email),
		c.Age,
		nullString(c.Occupation),
		nullString(c.Qualification),
		c.ExperienceYears,
		nullString(c.TargetCountry),
		nullString(c.ResidingCountry),
		nullString(c.Program),
		c.IELTSScore,
		nullString(c.Source),
		c.AssessmentAuthority,
		c.OccupationMapped,
		c.RegistrationFeePaid,
		c.AmountPaid,
		c.AssignedStaffID,
		actions,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ClientRepository) FindByID(ctx context.Context, id int) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.DB.QueryRowContext(ctx, query, id))
}

func (r *ClientRepository) FindByLeadID(ctx context.Context, leadID int) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE lead_id = $1`
	return scanClient(r.DB.QueryRowContext(ctx, query, leadID))
}

func (r *ClientRepository) List(ctx context.Context, filter usecase.ClientFilter) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var conds []string
	var args []interface{}

	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		conds = append(conds, fmt.Sprintf("assigned_staff_id = $%d", len(args)))
	}
	if filter.ProcessingStaffID != nil {
		args = append(args, *filter.ProcessingStaffID)
		conds = append(conds, fmt.Sprintf("processing_staff_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*entity.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, id int, input usecase.UpdateClientInput) (*entity.Client, error) {
	var sets []string
	var args []interface{}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if input.Name != nil {
		add("name", *input.Name)
	}
	if input.Phone != nil {
		add("phone", *input.Phone)
	}
	if input.AltPhone != nil {
		add("alt_phone", nullString(*input.AltPhone))
	}
	if input.Whatsapp != nil {
		add("whatsapp", nullString(*input.Whatsapp))
	}
	if input.Email != nil {
		add("email", nullString(*input.Email))
	}
	if input.Age != nil {
		add("age", *input.Age)
	}
	if input.Occupation != nil {
		add("occupation", nullString(*input.Occupation))
	}
	if input.Qualification != nil {
		add("qualification", nullString(*input.Qualification))
	}
	if input.ExperienceYears != nil {
		add("experience_years", *input.ExperienceYears)
	}
	if input.TargetCountry != nil {
		add("target_country", nullString(*input.TargetCountry))
	}
	if input.ResidingCountry != nil {
		add("residing_country", nullString(*input.ResidingCountry))
	}
	if input.Program != nil {
		add("program", nullString(*input.Program))
	}
	if input.IELTSScore != nil {
		add("ielts_score", *input.IELTSScore)
	}
	if input.FeeStatus != nil {
		add("fee_status", string(*input.FeeStatus))
	}
	if input.AmountPaid != nil {
		add("amount_paid", *input.AmountPaid)
	}
	if input.PaymentDueDate != nil {
		add("payment_due_date", *input.PaymentDueDate)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE clients SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), clientColumns)

	return scanClient(r.DB.QueryRowContext(ctx, query, args...))
}

// Handoff sets the Stage-2 operator and appends the handoff milestone in
// one transaction, under a row lock. A client that already has a Stage-2
// operator comes back unchanged with handedOff = false.
func (r *ClientRepository) Handoff(ctx context.Context, id, staffID int, action entity.CompletedAction) (*entity.Client, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var processingStaffID sql.NullInt64
	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT processing_staff_id, completed_actions FROM clients WHERE id = $1 FOR UPDATE`,
		id).Scan(&processingStaffID, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, entity.ErrNotFound
		}
		return nil, false, err
	}

	if processingStaffID.Valid {
		client, err := r.FindByID(ctx, id)
		return client, false, err
	}

	var actions []entity.CompletedAction
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &actions); err != nil {
			return nil, false, err
		}
	}
	actions = append(actions, action)

	updated, err := json.Marshal(actions)
	if err != nil {
		return nil, false, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE clients SET processing_staff_id = $1, processing_status = $2, completed_actions = $3, updated_at = NOW() WHERE id = $4`,
		staffID, action.Action, updated, id)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	client, err := r.FindByID(ctx, id)
	return client, true, err
}

// AppendAction is the one place naive last-write-wins would silently lose
// history, so the read-modify-write runs under a row lock. A duplicate key
// inside the lock is the idempotent no-op path.
func (r *ClientRepository) AppendAction(ctx context.Context, id int, action entity.CompletedAction, feeStatus *entity.FeeStatus) (*entity.Client, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT completed_actions FROM clients WHERE id = $1 FOR UPDATE`,
		id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, entity.ErrNotFound
		}
		return nil, false, err
	}

	var actions []entity.CompletedAction
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &actions); err != nil {
			return nil, false, err
		}
	}

	for _, a := range actions {
		if a.Action == action.Action {
			client, err := r.FindByID(ctx, id)
			return client, false, err
		}
	}

	actions = append(actions, action)
	updated, err := json.Marshal(actions)
	if err != nil {
		return nil, false, err
	}

	if feeStatus != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE clients SET completed_actions = $1, processing_status = $2, fee_status = $3, updated_at = NOW() WHERE id = $4`,
			updated, action.Action, string(*feeStatus), id)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE clients SET completed_actions = $1, processing_status = $2, updated_at = NOW() WHERE id = $3`,
			updated, action.Action, id)
	}
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	client, err := r.FindByID(ctx, id)
	return client, true, err
}

func (r *ClientRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func scanClient(row rowScanner) (*entity.Client, error) {
	var c entity.Client
	var altPhone, whatsapp, email, occupation, qualification sql.NullString
	var targetCountry, residingCountry, program, source sql.NullString
	var feeStatus, processingStatus sql.NullString
	var processingStaffID sql.NullInt64
	var paymentDueDate sql.NullTime
	var raw []byte

	err := row.Scan(
		&c.ID, &c.LeadID, &c.Name, &c.Phone, &altPhone, &whatsapp, &email,
		&c.Age, &occupation, &qualification, &c.ExperienceYears,
		&targetCountry, &residingCountry, &program, &c.IELTSScore, &source,
		&c.AssessmentAuthority, &c.OccupationMapped, &c.RegistrationFeePaid,
		&feeStatus, &c.AmountPaid, &paymentDueDate,
		&c.AssignedStaffID, &processingStaffID, &processingStatus, &raw,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	c.AltPhone = altPhone.String
	c.Whatsapp = whatsapp.String
	c.Email = email.String
	c.Occupation = occupation.String
	c.Qualification = qualification.String
	c.TargetCountry = targetCountry.String
	c.ResidingCountry = residingCountry.String
	c.Program = program.String
	c.Source = source.String
	c.ProcessingStatus = processingStatus.String

	if feeStatus.Valid {
		f := entity.FeeStatus(feeStatus.String)
		c.FeeStatus = &f
	}
	if processingStaffID.Valid {
		staffID := int(processingStaffID.Int64)
		c.ProcessingStaffID = &staffID
	}
	if paymentDueDate.Valid {
		d := paymentDueDate.Time
		c.PaymentDueDate = &d
	}

	c.CompletedActions = []entity.CompletedAction{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.CompletedActions); err != nil {
			return nil, err
		}
	}

	return &c, nil
}
