package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	// 测试基本错误创建
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 测试带详情的错误
	err = New(ErrCharacterNotFound, "角色ID: 42")
	suite.NotNil(err)
	suite.Equal(ErrCharacterNotFound, err.Code)
	suite.Equal("角色不存在", err.Message)
	suite.Equal("角色ID: 42", err.Details)

	// 测试多个详情
	err = New(ErrDatabaseConnect, "连接失败", "主机: localhost", "端口: 3306")
	suite.Equal("连接失败; 主机: localhost; 端口: 3306", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInsufficientMana, "需要 %d 点魔法值，当前 %d 点", 30, 12)
	suite.NotNil(err)
	suite.Equal(ErrInsufficientMana, err.Code)
	suite.Equal("需要 30 点魔法值，当前 12 点", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	// 包装标准错误
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	// 包装nil错误
	nilErr := Wrap(nil, ErrUnknown)
	suite.Nil(nilErr)

	// 包装已有的AppError
	appErr := New(ErrItemNotFound, "物品不存在")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrItemNotFound, wrappedAppErr.Code) // 保留原始错误码
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrAlreadyInCombat)
	suite.True(Is(err, ErrAlreadyInCombat))
	suite.False(Is(err, ErrCombatEnded))
	suite.False(Is(nil, ErrAlreadyInCombat))

	// 测试标准错误
	standardErr := errors.New("标准错误")
	suite.False(Is(standardErr, ErrUnknown))
}

// 测试获取错误码
func (suite *ErrorsTestSuite) TestGetCode() {
	// AppError
	appErr := New(ErrTokenExpired)
	suite.Equal(ErrTokenExpired, GetCode(appErr))

	// 标准错误
	standardErr := errors.New("标准错误")
	suite.Equal(ErrUnknown, GetCode(standardErr))

	// nil错误
	suite.Equal(ErrorCode(0), GetCode(nil))
}

// 测试错误消息
func (suite *ErrorsTestSuite) TestError() {
	// 只有消息
	err := &AppError{
		Code:    ErrCombatEnded,
		Message: "战斗已经结束",
	}
	suite.Equal("[2002] 战斗已经结束", err.Error())

	// 有详情
	err.Details = "状态: victory"
	suite.Equal("[2002] 战斗已经结束: 状态: victory", err.Error())
}

// 测试Unwrap
func (suite *ErrorsTestSuite) TestUnwrap() {
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrUnknown)
	suite.Equal(originalErr, wrappedErr.Unwrap())

	// 没有原因的错误
	err := New(ErrUnknown)
	suite.Nil(err.Unwrap())
}

// 测试WithCause
func (suite *ErrorsTestSuite) TestWithCause() {
	err := New(ErrDatabaseQuery)
	cause := errors.New("SQL语法错误")
	err.WithCause(cause)
	suite.Equal(cause, err.Cause)
	suite.Equal("SQL语法错误", err.Details)

	// 已有Details的情况
	err2 := New(ErrDatabaseQuery, "查询失败")
	err2.WithCause(cause)
	suite.Equal(cause, err2.Cause)
	suite.Equal("查询失败", err2.Details) // 保留原有Details
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrInvalidParam, 400},
		{ErrAlreadyInCombat, 409},
		{ErrCombatNotFound, 404},
		{ErrCharacterNotFound, 404},
		{ErrMonsterNotFound, 404},
		{ErrCombatEnded, 400},
		{ErrInsufficientMana, 400},
		{ErrNotConsumable, 400},
		{ErrNoStatPoints, 400},
		{ErrInvalidStat, 400},
		{ErrLevelTooLow, 400},
		{ErrWrongClass, 400},
		{ErrSlotEmpty, 400},
		{ErrItemNotOwned, 400},
		{ErrPermissionDenied, 403},
		{ErrAuthentication, 401},
		{ErrRateLimitExceeded, 429},
		{ErrDatabaseConnect, 503},
		{ErrUnknown, 500},
	}

	for _, tc := range testCases {
		err := New(tc.code)
		suite.Equal(tc.expected, err.HTTPStatus(), "错误码 %d 应该返回HTTP状态码 %d", tc.code, tc.expected)
	}
}

// 测试严重错误判断
func (suite *ErrorsTestSuite) TestIsCritical() {
	criticalErrors := []ErrorCode{
		ErrDatabaseConnect,
		ErrConfigLoad,
		ErrConfigMissing,
		ErrDataIntegrity,
	}

	for _, code := range criticalErrors {
		err := New(code)
		suite.True(IsCritical(err), "错误码 %d 应该是严重错误", code)
	}

	// 非严重错误
	nonCriticalErrors := []ErrorCode{
		ErrInvalidParam,
		ErrNotFound,
		ErrAlreadyInCombat,
	}

	for _, code := range nonCriticalErrors {
		err := New(code)
		suite.False(IsCritical(err), "错误码 %d 不应该是严重错误", code)
	}

	// nil错误
	suite.False(IsCritical(nil))
}

// 测试调用栈捕获
func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.NotNil(err.Stack)
	suite.Greater(len(err.Stack), 0)

	// 获取格式化的调用栈
	stackStr := err.GetStack()
	suite.NotEmpty(stackStr)
}

// 测试错误响应
func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrCharacterNotFound, "角色不存在")
	response := NewErrorResponse(err, "req-123")

	suite.False(response.Success)
	suite.Equal(err, response.Error)
	suite.Equal("req-123", response.RequestID)
	suite.Greater(response.Timestamp, int64(0))
}

// 测试未知错误码
func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	// 使用未定义的错误码
	err := New(ErrorCode(99999))
	suite.Equal(ErrorCode(99999), err.Code)
	suite.Equal("未知错误", err.Message) // 应该使用默认消息
}

// 测试战斗相关错误
func (suite *ErrorsTestSuite) TestCombatErrors() {
	combatErrors := map[ErrorCode]string{
		ErrAlreadyInCombat:  "角色已在战斗中",
		ErrCombatNotFound:   "战斗不存在",
		ErrCombatEnded:      "战斗已经结束",
		ErrInsufficientMana: "魔法值不足",
		ErrNotConsumable:    "该物品不能在战斗中使用",
		ErrMonsterNotFound:  "怪物不存在",
		ErrSkillNotFound:    "技能不存在",
	}

	for code, expectedMsg := range combatErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

// 测试角色相关错误
func (suite *ErrorsTestSuite) TestCharacterErrors() {
	characterErrors := map[ErrorCode]string{
		ErrCharacterNotFound: "角色不存在",
		ErrCharacterLimit:    "已达到角色数量上限",
		ErrNoStatPoints:      "没有可分配的属性点",
		ErrInvalidStat:       "无效的属性名",
		ErrInvalidClass:      "无效的职业",
	}

	for code, expectedMsg := range characterErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

// 测试物品相关错误
func (suite *ErrorsTestSuite) TestItemErrors() {
	itemErrors := map[ErrorCode]string{
		ErrItemNotFound:  "物品不存在",
		ErrItemNotOwned:  "背包中没有该物品",
		ErrNotEquipable:  "该物品不可装备",
		ErrLevelTooLow:   "等级不足，无法装备该物品",
		ErrWrongClass:    "职业不符，无法装备该物品",
		ErrSlotEmpty:     "该槽位没有装备",
		ErrInventoryFull: "背包已满",
	}

	for code, expectedMsg := range itemErrors {
		err := New(code)
		suite.Equal(expectedMsg, err.Message)
	}
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
