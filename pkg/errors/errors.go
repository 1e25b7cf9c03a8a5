package errors

func (d Definition) Error() string {
	return d.Message
}

// Is 按错误码比较，允许同一错误码携带不同的提示信息。
func (d Definition) Is(target error) bool {
	t, ok := target.(Definition)
	return ok && t.Code == d.Code
}

// WithMessage 返回替换了提示信息的同码错误。
func (d Definition) WithMessage(message string) Definition {
	return Definition{Code: d.Code, Message: message}
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 请求校验错误，调用方修正后重新提交即可。
var (
	CheckpointInvalid = Definition{Code: "CHECKPOINT_INVALID", Message: "Checkpoint must be one of morning, afternoon, evening"}
	InvalidRequest    = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	TooManyRequests   = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// 状态记录错误，对当前请求是致命的，不在引擎内重试。
var (
	StateNotFound    = Definition{Code: "STATE_NOT_FOUND", Message: "State record not found"}
	StateMalformed   = Definition{Code: "STATE_MALFORMED", Message: "State record malformed"}
	StateConflict    = Definition{Code: "STATE_CONFLICT", Message: "State record modified concurrently"}
	StateLockTimeout = Definition{Code: "STATE_LOCK_TIMEOUT", Message: "Timed out waiting for state lock"}
	StoreUnavailable = Definition{Code: "STORE_UNAVAILABLE", Message: "State store unavailable"}
)

// 时钟错误。
var (
	ClockUnavailable = Definition{Code: "CLOCK_UNAVAILABLE", Message: "Clock unavailable"}
)

var (
	InternalServerError = Definition{Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	CheckpointInvalid.Code:   CheckpointInvalid,
	InvalidRequest.Code:      InvalidRequest,
	TooManyRequests.Code:     TooManyRequests,
	StateNotFound.Code:       StateNotFound,
	StateMalformed.Code:      StateMalformed,
	StateConflict.Code:       StateConflict,
	StateLockTimeout.Code:    StateLockTimeout,
	StoreUnavailable.Code:    StoreUnavailable,
	ClockUnavailable.Code:    ClockUnavailable,
	InternalServerError.Code: InternalServerError,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
