package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldGroupID    = "group_id"
	FieldMemberID   = "member_id"
	FieldRound      = "round"
	FieldAmount     = "amount"
	FieldStatus     = "status"
	FieldRole       = "role"
	FieldAttempt    = "attempt"
	FieldOutcome    = "outcome"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentCore    = "core"
	ComponentCache   = "cache"
	ComponentStore   = "store"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentAuth    = "auth"
	ComponentInsight = "insight"
	ComponentSync    = "sync"
)

// Operations defines standard operation names.
const (
	OpLogin    = "login"
	OpPayment  = "record_payment"
	OpAuction  = "record_auction"
	OpConfig   = "upsert_config"
	OpMember   = "member"
	OpFetch    = "fetch"
	OpSave     = "save"
	OpPush     = "push"
	OpSweep    = "sweep_overdue"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
