package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高",

	// 用户与凭证相关错误码
	ErrUserNotFound:             "用户不存在",
	ErrUserAlreadyExist:         "用户名已存在",
	ErrInvalidCredentials:       "用户名或密码错误",
	ErrCurrentPasswordIncorrect: "当前密码错误",
	ErrNoFieldsToUpdate:         "没有需要更新的字段",
	ErrPermissionDenied:         "权限不足",
	ErrBypassKeyInvalid:         "初始化密钥无效",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// 用户与凭证相关错误码
	ErrUserNotFound:             StatusNotFound,
	ErrUserAlreadyExist:         StatusConflict,
	ErrInvalidCredentials:       StatusUnauthorized,
	ErrCurrentPasswordIncorrect: StatusBadRequest,
	ErrNoFieldsToUpdate:         StatusBadRequest,
	ErrPermissionDenied:         StatusForbidden,
	ErrBypassKeyInvalid:         StatusForbidden,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
