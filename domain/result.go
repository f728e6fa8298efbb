package domain

// Result is the response envelope of every transaction: success responses
// carry Data, failure responses carry Alerts. The transport layer maps it
// to a protocol response without further interpretation.
type Result struct {
	Code   int         `json:"code"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
	Alerts []string    `json:"alerts,omitempty"`
}

// Envelope codes. Business handlers may set any code they like; these are
// the ones the engine itself produces.
const (
	CodeOK                 = 200
	CodeBadRequest         = 400
	CodeForbidden          = 403
	CodeUnknownTransaction = 404
	CodeServerError        = 500
)

// OK builds a success envelope.
func OK(msg string, data interface{}) *Result {
	return &Result{Code: CodeOK, Msg: msg, Data: data}
}

// Fail builds a failure envelope.
func Fail(code int, msg string, alerts ...string) *Result {
	return &Result{Code: code, Msg: msg, Alerts: alerts}
}

// IsSuccess reports whether the envelope is a 2xx-class outcome.
func (r *Result) IsSuccess() bool {
	return r != nil && r.Code >= 200 && r.Code < 300
}
