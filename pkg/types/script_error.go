package types

import (
	"errors"
	"fmt"
)

// ScriptError 脚本拒绝原因
//
// 每个原因对应唯一的错误码，与链上脚本的退出码约定保持一致：
// 1..4 为宿主读取类错误，5 及以上为脚本自身的不变式违反。
type ScriptError struct {
	Code   int8
	Reason string
}

// Error 实现 error 接口
func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s (error code %d)", e.Reason, e.Code)
}

// 宿主读取类错误
var (
	ErrIndexOutOfBound = &ScriptError{Code: 1, Reason: "IndexOutOfBound"}
	ErrItemMissing     = &ScriptError{Code: 2, Reason: "ItemMissing"}
	ErrLengthNotEnough = &ScriptError{Code: 3, Reason: "LengthNotEnough"}
	ErrEncoding        = &ScriptError{Code: 4, Reason: "Encoding"}
)

// 脚本拒绝原因（闭集）
var (
	ErrInvalidArgsLength        = &ScriptError{Code: 5, Reason: "InvalidArgsLength"}
	ErrInvalidDataLength        = &ScriptError{Code: 6, Reason: "InvalidDataLength"}
	ErrInvalidLinkedList        = &ScriptError{Code: 7, Reason: "InvalidLinkedList"}
	ErrInvalidInitHash          = &ScriptError{Code: 8, Reason: "InvalidInitHash"}
	ErrInvalidInputCount        = &ScriptError{Code: 9, Reason: "InvalidInputCount"}
	ErrInvalidOutputLockScript  = &ScriptError{Code: 10, Reason: "InvalidOutputLockScript"}
	ErrInvalidCellDepTypeScript = &ScriptError{Code: 11, Reason: "InvalidCellDepTypeScript"}
	ErrInvalidCellDepRef        = &ScriptError{Code: 12, Reason: "InvalidCellDepRef"}
	ErrInvalidWitnessFormat     = &ScriptError{Code: 13, Reason: "InvalidWitnessFormat"}
	ErrInvalidWrappedScriptHash = &ScriptError{Code: 14, Reason: "InvalidWrappedScriptHash"}
	ErrWrongWitness             = &ScriptError{Code: 15, Reason: "WrongWitness"}
	ErrWrongArgv                = &ScriptError{Code: 16, Reason: "WrongArgv"}
	ErrScriptNotFound           = &ScriptError{Code: 17, Reason: "ScriptNotFound"}
	ErrDelegateRejected         = &ScriptError{Code: 18, Reason: "DelegateRejected"}
)

// AsScriptError 从错误链中提取 ScriptError
func AsScriptError(err error) (*ScriptError, bool) {
	var se *ScriptError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var scriptErrorsByCode = map[int8]*ScriptError{}

func init() {
	for _, se := range []*ScriptError{
		ErrIndexOutOfBound, ErrItemMissing, ErrLengthNotEnough, ErrEncoding,
		ErrInvalidArgsLength, ErrInvalidDataLength, ErrInvalidLinkedList, ErrInvalidInitHash,
		ErrInvalidInputCount, ErrInvalidOutputLockScript, ErrInvalidCellDepTypeScript,
		ErrInvalidCellDepRef, ErrInvalidWitnessFormat, ErrInvalidWrappedScriptHash,
		ErrWrongWitness, ErrWrongArgv, ErrScriptNotFound, ErrDelegateRejected,
	} {
		scriptErrorsByCode[se.Code] = se
	}
}

// ScriptErrorByCode 按错误码查找拒绝原因（程序退出码与错误码一致）
func ScriptErrorByCode(code int8) (*ScriptError, bool) {
	se, ok := scriptErrorsByCode[code]
	return se, ok
}
