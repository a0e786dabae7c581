package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

// PutClientIndex stores a defendant-to-client mapping.
func (s *Store) PutClientIndex(ctx context.Context, record storage.ClientIndexRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO client_index (defendant_id, defence_client_id, updated_at) VALUES (?, ?, ?) ON CONFLICT(defendant_id) DO UPDATE SET defence_client_id = excluded.defence_client_id, updated_at = excluded.updated_at",
		strings.TrimSpace(record.DefendantID), record.DefenceClientID, updatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("put client index: %w", err)
	}
	return nil
}

// GetClientIndex returns the mapping for a defendant.
func (s *Store) GetClientIndex(ctx context.Context, defendantID string) (storage.ClientIndexRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ClientIndexRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ClientIndexRecord{}, fmt.Errorf("storage is not configured")
	}

	defendantID = strings.TrimSpace(defendantID)
	var record storage.ClientIndexRecord
	var millis int64
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT defendant_id, defence_client_id, updated_at FROM client_index WHERE defendant_id = ?", defendantID)
	if err := row.Scan(&record.DefendantID, &record.DefenceClientID, &millis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ClientIndexRecord{}, storage.ErrNotFound
		}
		return storage.ClientIndexRecord{}, fmt.Errorf("read client index: %w", err)
	}
	record.UpdatedAt = time.UnixMilli(millis).UTC()
	return record, nil
}

// PutAssociation stores the current-association record for a defendant.
func (s *Store) PutAssociation(ctx context.Context, record storage.AssociationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO associations (defendant_id, organisation_id, by_rep_order, locked, laa_contract_number, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(defendant_id) DO UPDATE SET
    organisation_id = excluded.organisation_id,
    by_rep_order = excluded.by_rep_order,
    locked = excluded.locked,
    laa_contract_number = excluded.laa_contract_number,
    updated_at = excluded.updated_at`,
		strings.TrimSpace(record.DefendantID),
		record.OrganisationID,
		boolToInt(record.ByRepOrder),
		boolToInt(record.Locked),
		record.LAAContractNumber,
		updatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("put association: %w", err)
	}
	return nil
}

// GetAssociation returns the current-association record for a defendant.
func (s *Store) GetAssociation(ctx context.Context, defendantID string) (storage.AssociationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AssociationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AssociationRecord{}, fmt.Errorf("storage is not configured")
	}

	defendantID = strings.TrimSpace(defendantID)
	var record storage.AssociationRecord
	var byRepOrder, locked int
	var millis int64
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT defendant_id, organisation_id, by_rep_order, locked, laa_contract_number, updated_at FROM associations WHERE defendant_id = ?",
		defendantID)
	if err := row.Scan(&record.DefendantID, &record.OrganisationID, &byRepOrder, &locked, &record.LAAContractNumber, &millis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AssociationRecord{}, storage.ErrNotFound
		}
		return storage.AssociationRecord{}, fmt.Errorf("read association: %w", err)
	}
	record.ByRepOrder = byRepOrder != 0
	record.Locked = locked != 0
	record.UpdatedAt = time.UnixMilli(millis).UTC()
	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PutCaseAssignment stores a case-assignment read-model row.
func (s *Store) PutCaseAssignment(ctx context.Context, record storage.CaseAssignmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO case_assignments (case_id, assignee_id, organisation_id, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(case_id, assignee_id) DO UPDATE SET
    organisation_id = excluded.organisation_id,
    updated_at = excluded.updated_at`,
		strings.TrimSpace(record.CaseID),
		strings.TrimSpace(record.AssigneeID),
		record.OrganisationID,
		updatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("put case assignment: %w", err)
	}
	return nil
}

// DeleteCaseAssignment removes a case-assignment read-model row.
func (s *Store) DeleteCaseAssignment(ctx context.Context, caseID, assigneeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM case_assignments WHERE case_id = ? AND assignee_id = ?",
		strings.TrimSpace(caseID), strings.TrimSpace(assigneeID),
	); err != nil {
		return fmt.Errorf("delete case assignment: %w", err)
	}
	return nil
}

// ListCaseAssignments returns every assignment row held for a case, ordered
// by assignee id.
func (s *Store) ListCaseAssignments(ctx context.Context, caseID string) ([]storage.CaseAssignmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT case_id, assignee_id, organisation_id, updated_at FROM case_assignments WHERE case_id = ? ORDER BY assignee_id",
		strings.TrimSpace(caseID))
	if err != nil {
		return nil, fmt.Errorf("list case assignments: %w", err)
	}
	defer rows.Close()

	var records []storage.CaseAssignmentRecord
	for rows.Next() {
		var record storage.CaseAssignmentRecord
		var millis int64
		if err := rows.Scan(&record.CaseID, &record.AssigneeID, &record.OrganisationID, &millis); err != nil {
			return nil, fmt.Errorf("scan case assignment: %w", err)
		}
		record.UpdatedAt = time.UnixMilli(millis).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list case assignments: %w", err)
	}
	return records, nil
}
