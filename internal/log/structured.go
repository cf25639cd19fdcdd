package log

import "context"

// StructuredLogger writes the mutation audit trail: one info record per
// successful ledger, rate or budget change, with a fixed field set.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger tags the audit records with the ledger component.
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger.WithComponent(ComponentLedger)}
}

// LogEntryCreated records a new ledger entry and its export reference.
func (sl *StructuredLogger) LogEntryCreated(ctx context.Context, desc string, value float64, currency, category, ref string) {
	sl.logger.InfoContext(ctx, "Entry created",
		FieldOperation, OpCreate,
		FieldDesc, desc,
		FieldValue, value,
		FieldCurrency, currency,
		FieldCategory, category,
		FieldRef, ref)
}

// LogEntryDeleted records a ledger entry removal.
func (sl *StructuredLogger) LogEntryDeleted(ctx context.Context, id int64) {
	sl.logger.InfoContext(ctx, "Entry deleted",
		FieldOperation, OpDelete,
		FieldEntryID, id)
}

// LogRateSaved records a new conversion rate.
func (sl *StructuredLogger) LogRateSaved(ctx context.Context, base, target string, rate float64) {
	sl.logger.InfoContext(ctx, "Rate created",
		FieldOperation, OpCreate,
		FieldBase, base,
		FieldTarget, target,
		FieldRate, rate)
}

// LogRateDeleted records a conversion rate removal.
func (sl *StructuredLogger) LogRateDeleted(ctx context.Context, id int64) {
	sl.logger.InfoContext(ctx, "Rate deleted",
		FieldOperation, OpDelete,
		"rate_id", id)
}

// LogBudgetCreated records a new recurring budget.
func (sl *StructuredLogger) LogBudgetCreated(ctx context.Context, desc, period, currency string, value float64) {
	sl.logger.InfoContext(ctx, "Budget created",
		FieldOperation, OpCreate,
		FieldDesc, desc,
		FieldPeriod, period,
		FieldCurrency, currency,
		FieldValue, value)
}

// LogBudgetDeactivated records a budget being switched off.
func (sl *StructuredLogger) LogBudgetDeactivated(ctx context.Context, id int64) {
	sl.logger.InfoContext(ctx, "Budget deactivated",
		FieldOperation, OpDeactivate,
		FieldBudgetID, id)
}
