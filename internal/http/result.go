package httpapi

// Result is the wire envelope every JSON endpoint answers with: a success
// flag plus data on the happy path, an error string otherwise. Count is only
// present on list responses.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Ok(data any) Result {
	return Result{Success: true, Data: data}
}

func OkCount(data any, count int) Result {
	return Result{Success: true, Data: data, Count: &count}
}

func OkMessage(data any, message string) Result {
	return Result{Success: true, Data: data, Message: message}
}

func Fail(message string) Result {
	return Result{Success: false, Error: message}
}
