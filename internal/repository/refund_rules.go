package repository

import (
	"context"
	"fmt"

	"evently/internal/database"
	"evently/internal/models"

	"github.com/google/uuid"
)

type RefundRuleRepository struct {
	db *database.DB
}

func NewRefundRuleRepository(db *database.DB) *RefundRuleRepository {
	return &RefundRuleRepository{db: db}
}

// ListDetails returns the tiers of a rule in their stored order.
func (r *RefundRuleRepository) ListDetails(ctx context.Context, ruleID uuid.UUID) ([]models.RefundRuleDetail, error) {
	query := `
		SELECT id, refund_rule_id, min_days_before_event, max_days_before_event, refund_percent, position
		FROM refund_rule_details
		WHERE refund_rule_id = $1
		ORDER BY position, id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund rule details: %w", err)
	}
	defer rows.Close()

	var details []models.RefundRuleDetail
	for rows.Next() {
		var d models.RefundRuleDetail
		if err := rows.Scan(
			&d.ID,
			&d.RefundRuleID,
			&d.MinDaysBeforeEvent,
			&d.MaxDaysBeforeEvent,
			&d.RefundPercent,
			&d.Position,
		); err != nil {
			return nil, fmt.Errorf("failed to scan refund rule detail: %w", err)
		}
		details = append(details, d)
	}

	return details, rows.Err()
}
