package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// 退出码
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // 批次中有记录失败
	ExitCommandError = 2 // 参数、文件或数据库错误
)

// ExitError 携带退出码的错误
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError 包装错误并指定退出码
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode 非 ExitError 时返回 ExitFailure
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter 按 json/text 输出结果
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Emit json 格式输出整个对象，text 格式输出 text
func (f *OutputFormatter) Emit(data interface{}, text string) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}
