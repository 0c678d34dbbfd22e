package service

// Result is what every store operation returns. Stores never return errors
// past their boundary: a failure sets Err, a guarded no-op sets Notice and
// leaves Err nil.
type Result[T any] struct {
	Success bool
	Data    T
	Err     error
	Notice  string
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func failed[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func refused[T any](notice string) Result[T] {
	return Result[T]{Notice: notice}
}
