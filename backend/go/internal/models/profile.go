package models

// 响应信封中 status 字段的取值。
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Profile 是对外展示的静态用户资料。
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Stack string `json:"stack"`
}

// ProfileResponse 是 GET /me 的响应体，每个请求单独构建。
type ProfileResponse struct {
	Status    string  `json:"status"`
	User      Profile `json:"user"`
	Timestamp string  `json:"timestamp"`
	Fact      string  `json:"fact"`
}

// ErrorResponse 是所有错误响应共用的信封。
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewErrorResponse 创建一个 status 为 "error" 的响应信封。
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Message: message}
}
