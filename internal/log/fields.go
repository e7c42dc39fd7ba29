package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldCategoryID = "category_id"
	FieldBudgetID   = "budget_id"
	FieldGoalID     = "goal_id"
	FieldEntryID    = "entry_id"
	FieldAmount     = "amount"
	FieldSpent      = "spent"
	FieldOverage    = "overage"
	FieldPeriod     = "period"
	FieldStartDate  = "start_date"
	FieldEndDate    = "end_date"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentBudget      = "budget"
	ComponentGoal        = "goal"
	ComponentTransaction = "transaction"
	ComponentReport      = "report"
	ComponentRecommend   = "recommend"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpCheck    = "check"
	OpPublish  = "publish"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
