package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldCount      = "count"
	FieldExpenseID  = "expense_id"
	FieldDesc       = "description"
	FieldAmount     = "amount_cents"
	FieldCategory   = "category"
	FieldDate       = "date"
	FieldBackend    = "backend"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentCharts  = "charts"
	ComponentExport  = "export"
	ComponentConfig  = "config"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpFilter   = "filter"
	OpReload   = "reload"
	OpPersist  = "persist"
	OpRender   = "render"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
