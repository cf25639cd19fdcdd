package log

// Field names shared across components. Handlers may add ad-hoc keys,
// but anything logged from more than one place belongs here.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldOperation = "operation"

	FieldPath     = "path"
	FieldClientIP = "client_ip"

	FieldYear     = "year"
	FieldMonth    = "month"
	FieldDisplay  = "display_currency"
	FieldEntryID  = "entry_id"
	FieldDesc     = "description"
	FieldValue    = "value"
	FieldCurrency = "currency"
	FieldCategory = "category"
	FieldBase     = "base"
	FieldTarget   = "target"
	FieldRate     = "rate"
	FieldPeriod   = "period"
	FieldBudgetID = "budget_id"
	FieldRef      = "report_ref"
)

// Component tags. One per package that owns a logger.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentTemplate = "template"
	ComponentStorage  = "storage"
	ComponentWorker   = "worker"
)

// Operation names used on audit records.
const (
	OpCreate     = "create"
	OpDelete     = "delete"
	OpDeactivate = "deactivate"
)

// Error categories for alert routing.
const (
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeValidation    = "validation_error"
)
