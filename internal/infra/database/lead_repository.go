package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

const leadColumns = `id, name, phone, alt_phone, whatsapp, email,
	age, occupation, qualification, experience_years,
	target_country, residing_country, program, ielts_score, source,
	status, priority, assigned_staff_id, follow_up_date, follow_up_status, comment,
	created_by, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			name, phone, alt_phone, whatsapp, email,
			age, occupation, qualification, experience_years,
			target_country, residing_country, program, ielts_score, source,
			status, priority, assigned_staff_id, follow_up_status, comment,
			created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	var priority *string
	if lead.Priority != nil {
		p := string(*lead.Priority)
		priority = &p
	}

	return r.DB.QueryRowContext(ctx, query,
		lead.Name,
		lead.Phone,
		nullString(lead.AltPhone),
		nullString(lead.Whatsapp),
		nullString(lead.Email),
		lead.Age,
		nullString(lead.Occupation),
		nullString(lead.Qualification),
		lead.ExperienceYears,
		nullString(lead.TargetCountry),
		nullString(lead.ResidingCountry),
		nullString(lead.Program),
		lead.IELTSScore,
		nullString(lead.Source),
		string(lead.Status),
		priority,
		lead.AssignedStaffID,
		string(lead.FollowUpStatus),
		nullString(lead.Comment),
		lead.CreatedBy,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *LeadRepository) FindByID(ctx context.Context, id int) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLead(r.DB.QueryRowContext(ctx, query, id))
}

func (r *LeadRepository) List(ctx context.Context, filter usecase.LeadFilter) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var conds []string
	var args []interface{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		conds = append(conds, fmt.Sprintf("assigned_staff_id = $%d", len(args)))
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

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// Update applies the whole patch in one UPDATE so concurrent patches
// serialize at the row and never interleave field-by-field.
func (r *LeadRepository) Update(ctx context.Context, id int, input usecase.UpdateLeadInput) (*entity.Lead, error) {
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
	if input.Source != nil {
		add("source", nullString(*input.Source))
	}
	if input.Status != nil {
		add("status", string(*input.Status))
	}
	if input.Priority != nil {
		add("priority", string(*input.Priority))
	}
	if input.AssignedStaffID.Set {
		add("assigned_staff_id", input.AssignedStaffID.Value)
	}
	if input.FollowUpDate != nil {
		add("follow_up_date", *input.FollowUpDate)
	}
	if input.FollowUpStatus != nil {
		add("follow_up_status", string(*input.FollowUpStatus))
	}
	if input.Comment != nil {
		add("comment", nullString(*input.Comment))
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), leadColumns)

	return scanLead(r.DB.QueryRowContext(ctx, query, args...))
}

// MarkConverted claims the lead for conversion. The guard in the WHERE
// clause admits exactly one winner when two conversions race.
func (r *LeadRepository) MarkConverted(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $1`,
		string(entity.LeadStatusRegistrationCompleted), id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrLeadAlreadyConverted
	}

	return nil
}

func (r *LeadRepository) RevertConverted(ctx context.Context, id int, previous entity.LeadStatus) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(previous), id)
	return err
}

func (r *LeadRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var altPhone, whatsapp, email, occupation, qualification sql.NullString
	var targetCountry, residingCountry, program, source, comment sql.NullString
	var priority sql.NullString
	var assignedStaffID sql.NullInt64
	var followUpDate sql.NullTime
	var status, followUpStatus string

	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &altPhone, &whatsapp, &email,
		&lead.Age, &occupation, &qualification, &lead.ExperienceYears,
		&targetCountry, &residingCountry, &program, &lead.IELTSScore, &source,
		&status, &priority, &assignedStaffID, &followUpDate, &followUpStatus, &comment,
		&lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	lead.AltPhone = altPhone.String
	lead.Whatsapp = whatsapp.String
	lead.Email = email.String
	lead.Occupation = occupation.String
	lead.Qualification = qualification.String
	lead.TargetCountry = targetCountry.String
	lead.ResidingCountry = residingCountry.String
	lead.Program = program.String
	lead.Source = source.String
	lead.Comment = comment.String
	lead.Status = entity.LeadStatus(status)
	lead.FollowUpStatus = entity.FollowUpStatus(followUpStatus)

	if priority.Valid {
		p := entity.Priority(priority.String)
		lead.Priority = &p
	}
	if assignedStaffID.Valid {
		staffID := int(assignedStaffID.Int64)
		lead.AssignedStaffID = &staffID
	}
	if followUpDate.Valid {
		d := followUpDate.Time
		lead.FollowUpDate = &d
	}

	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
