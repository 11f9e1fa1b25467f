package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldLimit      = "limit"
	FieldCategory   = "category"
	FieldMerchant   = "merchant"
	FieldSampleSize = "sample_size"
	FieldPromptKind = "prompt_kind"
	FieldState      = "state"
	FieldRows       = "rows"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentSeed    = "seed"
	ComponentLaunch  = "launch"
	ComponentAI      = "ai"
	ComponentEvents  = "events"
)
