package common

// Result 尽力而为操作的结果：要么是正常值，要么是降级后的默认值加上被吸收的错误。
// 降级不会向上抛出，但调用方可以通过 Degraded/Err 看到发生过什么。
type Result[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

// OK 正常结果
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degrade 降级结果，fallback 是调用方应该继续使用的值
func Degrade[T any](fallback T, err error) Result[T] {
	return Result[T]{Value: fallback, Degraded: true, Err: err}
}

// Get 返回值以及是否降级
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Degraded
}
