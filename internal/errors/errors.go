package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrUnknown          ErrorCode = 1000
	ErrInvalidParam     ErrorCode = 1001
	ErrNotFound         ErrorCode = 1002
	ErrAlreadyExists    ErrorCode = 1003
	ErrPermissionDenied ErrorCode = 1004
	ErrTimeout          ErrorCode = 1005
	ErrCanceled         ErrorCode = 1006
	ErrNotImplemented   ErrorCode = 1007

	// 战斗错误 (2000-2999)
	ErrAlreadyInCombat  ErrorCode = 2000
	ErrCombatNotFound   ErrorCode = 2001
	ErrCombatEnded      ErrorCode = 2002
	ErrInsufficientMana ErrorCode = 2003
	ErrNotConsumable    ErrorCode = 2004
	ErrMonsterNotFound  ErrorCode = 2005
	ErrSkillNotFound    ErrorCode = 2006
	ErrSkillLevelTooLow ErrorCode = 2007
	ErrSkillWrongClass  ErrorCode = 2008
	ErrSkillOnCooldown  ErrorCode = 2009

	// 角色错误 (3000-3999)
	ErrCharacterNotFound ErrorCode = 3000
	ErrCharacterLimit    ErrorCode = 3001
	ErrNoStatPoints      ErrorCode = 3002
	ErrInvalidStat       ErrorCode = 3003
	ErrInvalidClass      ErrorCode = 3004

	// 物品错误 (4000-4999)
	ErrItemNotFound  ErrorCode = 4000
	ErrItemNotOwned  ErrorCode = 4001
	ErrNotEquipable  ErrorCode = 4002
	ErrLevelTooLow   ErrorCode = 4003
	ErrWrongClass    ErrorCode = 4004
	ErrSlotEmpty     ErrorCode = 4005
	ErrInvalidSlot   ErrorCode = 4006
	ErrInventoryFull ErrorCode = 4007

	// 数据库错误 (5000-5999)
	ErrDatabaseConnect ErrorCode = 5000
	ErrDatabaseQuery   ErrorCode = 5001
	ErrDatabaseInsert  ErrorCode = 5002
	ErrDatabaseUpdate  ErrorCode = 5003
	ErrDatabaseDelete  ErrorCode = 5004
	ErrTransaction     ErrorCode = 5005
	ErrDataIntegrity   ErrorCode = 5006

	// 配置错误 (6000-6999)
	ErrConfigLoad     ErrorCode = 6000
	ErrConfigParse    ErrorCode = 6001
	ErrConfigValidate ErrorCode = 6002
	ErrConfigMissing  ErrorCode = 6003

	// 安全错误 (7000-7999)
	ErrAuthentication    ErrorCode = 7000
	ErrAuthorization     ErrorCode = 7001
	ErrTokenExpired      ErrorCode = 7002
	ErrTokenInvalid      ErrorCode = 7003
	ErrRateLimitExceeded ErrorCode = 7004
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	// 通用错误
	ErrUnknown:          "未知错误",
	ErrInvalidParam:     "无效的参数",
	ErrNotFound:         "资源未找到",
	ErrAlreadyExists:    "资源已存在",
	ErrPermissionDenied: "权限不足",
	ErrTimeout:          "操作超时",
	ErrCanceled:         "操作已取消",
	ErrNotImplemented:   "功能未实现",

	// 战斗错误
	ErrAlreadyInCombat:  "角色已在战斗中",
	ErrCombatNotFound:   "战斗不存在",
	ErrCombatEnded:      "战斗已经结束",
	ErrInsufficientMana: "魔法值不足",
	ErrNotConsumable:    "该物品不能在战斗中使用",
	ErrMonsterNotFound:  "怪物不存在",
	ErrSkillNotFound:    "技能不存在",
	ErrSkillLevelTooLow: "等级不足，无法使用该技能",
	ErrSkillWrongClass:  "职业不符，无法使用该技能",
	ErrSkillOnCooldown:  "技能冷却中",

	// 角色错误
	ErrCharacterNotFound: "角色不存在",
	ErrCharacterLimit:    "已达到角色数量上限",
	ErrNoStatPoints:      "没有可分配的属性点",
	ErrInvalidStat:       "无效的属性名",
	ErrInvalidClass:      "无效的职业",

	// 物品错误
	ErrItemNotFound:  "物品不存在",
	ErrItemNotOwned:  "背包中没有该物品",
	ErrNotEquipable:  "该物品不可装备",
	ErrLevelTooLow:   "等级不足，无法装备该物品",
	ErrWrongClass:    "职业不符，无法装备该物品",
	ErrSlotEmpty:     "该槽位没有装备",
	ErrInvalidSlot:   "无效的装备槽位",
	ErrInventoryFull: "背包已满",

	// 数据库错误
	ErrDatabaseConnect: "数据库连接失败",
	ErrDatabaseQuery:   "数据库查询失败",
	ErrDatabaseInsert:  "数据库插入失败",
	ErrDatabaseUpdate:  "数据库更新失败",
	ErrDatabaseDelete:  "数据库删除失败",
	ErrTransaction:     "事务处理失败",
	ErrDataIntegrity:   "数据完整性错误",

	// 配置错误
	ErrConfigLoad:     "配置加载失败",
	ErrConfigParse:    "配置解析失败",
	ErrConfigValidate: "配置验证失败",
	ErrConfigMissing:  "配置项缺失",

	// 安全错误
	ErrAuthentication:    "认证失败",
	ErrAuthorization:     "授权失败",
	ErrTokenExpired:      "令牌已过期",
	ErrTokenInvalid:      "无效的令牌",
	ErrRateLimitExceeded: "请求频率超限",
}

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode    `json:"code"`            // 错误码
	Message string       `json:"message"`         // 错误消息
	Details string       `json:"details"`         // 详细信息
	Cause   error        `json:"-"`               // 原始错误
	Stack   []StackFrame `json:"stack,omitempty"` // 调用栈
}

// StackFrame 调用栈帧
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	// 捕获调用栈
	err.captureStack(2)

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return New(code, details)
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，保留原始错误码
	if appErr, ok := err.(*AppError); ok {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr := New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf 包装格式化错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return Wrap(err, code, details)
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}

	return ErrUnknown
}

// captureStack 捕获调用栈
func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)

	if n > 0 {
		frames := runtime.CallersFrames(pcs[:n])
		for {
			frame, more := frames.Next()

			// 跳过runtime和本包的调用
			if strings.Contains(frame.Function, "runtime.") ||
				strings.Contains(frame.Function, "github.com/wfunc/rpg-game/internal/errors") {
				if !more {
					break
				}
				continue
			}

			e.Stack = append(e.Stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})

			if !more {
				break
			}

			// 只保留前10个栈帧
			if len(e.Stack) >= 10 {
				break
			}
		}
	}
}

// GetStack 获取格式化的调用栈
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrAlreadyInCombat || e.Code == ErrAlreadyExists:
		return 409 // Conflict
	case e.Code == ErrNotFound ||
		e.Code == ErrCombatNotFound ||
		e.Code == ErrCharacterNotFound ||
		e.Code == ErrMonsterNotFound ||
		e.Code == ErrSkillNotFound ||
		e.Code == ErrItemNotFound:
		return 404 // Not Found
	case e.Code == ErrPermissionDenied:
		return 403 // Forbidden
	case e.Code == ErrTimeout:
		return 408 // Request Timeout
	case e.Code == ErrInvalidParam:
		return 400 // Bad Request
	case e.Code >= 2002 && e.Code <= 4999:
		return 400 // 战斗/角色/物品规则错误
	case e.Code >= 7000 && e.Code <= 7003:
		return 401 // Unauthorized
	case e.Code == ErrRateLimitExceeded:
		return 429 // Too Many Requests
	case e.Code >= 5000 && e.Code <= 5999:
		return 503 // Service Unavailable
	default:
		return 500 // Internal Server Error
	}
}

// IsCritical 判断是否为严重错误
func IsCritical(err error) bool {
	if err == nil {
		return false
	}

	code := GetCode(err)
	switch code {
	case ErrDatabaseConnect,
		ErrConfigLoad,
		ErrConfigMissing,
		ErrDataIntegrity:
		return true
	default:
		return false
	}
}

// ErrorResponse API错误响应结构
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
