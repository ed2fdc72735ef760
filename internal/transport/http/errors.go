package httptransport

import (
	"campusfeedback/backend/internal/auth"
	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/service"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// 邮箱池错误
	service.ErrMailboxExists:      "邮箱地址已存在",
	service.ErrMailboxNotFound:    "邮箱不存在",
	service.ErrNoMailboxAvailable: "当前没有可用的发件邮箱",

	// 密码重置错误
	service.ErrTokenInvalid:    "重置链接无效或已过期",
	service.ErrTooManyRequests: "请求过于频繁，请稍后再试",

	// 教务数据错误
	service.ErrRecordNotFound:   "记录不存在",
	service.ErrDuplicateRecord:  "记录已存在",
	service.ErrInvalidReference: "引用的记录不存在",
	service.ErrMissingField:     "必填字段不能为空",

	// 反馈错误
	service.ErrFeedbackAlreadySubmitted: "您已提交过该课程的反馈",
	service.ErrStudentNotFound:          "学号不存在，请核对院系与学号",
	service.ErrScheduleNotFound:         "开课安排不存在",
	service.ErrUnknownReportKind:        "不支持的报表类型",

	// 认证错误
	auth.ErrInvalidCredentials: "用户名或密码错误",
	auth.ErrUserInactive:       "账号已被禁用",
	auth.ErrUserExists:         "邮箱或用户名已存在",
	auth.ErrPasswordTooShort:   "密码至少需要 8 个字符",
	auth.ErrPasswordTooLong:    "密码不能超过 128 个字符",

	// 参数校验错误
	domain.ErrInvalidEmail:     "邮箱格式无效",
	domain.ErrEmailTooLong:     "邮箱地址过长",
	domain.ErrInvalidPort:      "端口号无效",
	domain.ErrInvalidLimit:     "配额上限无效",
	domain.ErrRatingOutOfRange: "评分必须在 1 到 5 之间",
	domain.ErrWrongRatingCount: "必须对全部 10 个题目评分",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest   = "请求参数格式错误"
	MsgRequestBodyEmpty = "请求体不能为空"

	// 认证相关
	MsgAuthRequired       = "需要登录认证"
	MsgInvalidCredentials = "用户名或密码错误"
	MsgTokenExpired       = "登录已过期，请重新登录"
	MsgTokenInvalid       = "无效的访问令牌"
	MsgPermissionDenied   = "权限不足"

	// 邮箱池相关
	MsgMailboxCreateFailed = "添加发件邮箱失败"
	MsgMailboxStatusFailed = "获取邮箱状态失败"
	MsgMailboxToggleFailed = "切换邮箱状态失败"
	MsgEmailStatsFailed    = "获取发送统计失败"

	// 密码重置相关
	MsgResetAccepted    = "如果该邮箱存在，我们已发送重置邮件"
	MsgResetConfirmed   = "密码已重置，请使用新密码登录"
	MsgResetFailed      = "密码重置失败，请稍后重试"
	MsgResetRateLimited = "请求过于频繁，请稍后再试"

	// 教务数据相关
	MsgListFailed   = "获取列表失败"
	MsgGetFailed    = "获取详情失败"
	MsgCreateFailed = "创建失败"
	MsgUpdateFailed = "更新失败"
	MsgDeleteFailed = "删除失败"

	// 反馈相关
	MsgFeedbackSubmitFailed = "提交反馈失败"
	MsgFeedbackListFailed   = "获取反馈列表失败"
	MsgReportFailed         = "生成报表失败"
	MsgExportFailed         = "导出报表失败"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)
