package httpapi

// Result 家族树接口的统一响应包（成员导出的 xlsx 除外）
// - 成功：code=2000, type="success", message="ok"；列表类 result 为 {items, total}
// - 失败：code=-1, type="error", result=null；message 为错误原因，500 时固定为 "internal error"
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}
