package diag

import "context"

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	accountIDKey contextKey = "accountID"
)

// ContextWithRequestID returns a context that carries the request id
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDValue returns the request id from the context or empty string
func RequestIDValue(ctx context.Context) string {
	val, _ := ctx.Value(requestIDKey).(string)
	return val
}

// ContextWithAccountID returns a context that carries the id of the account
// a request is working with. It's added to every log message
func ContextWithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountIDValue returns the account id from the context or empty string
func AccountIDValue(ctx context.Context) string {
	val, _ := ctx.Value(accountIDKey).(string)
	return val
}

func contextFields(ctx context.Context) map[string]string {
	var fields map[string]string
	add := func(key, value string) {
		if value == "" {
			return
		}
		if fields == nil {
			fields = map[string]string{}
		}
		fields[key] = value
	}
	add("requestID", RequestIDValue(ctx))
	add("accountID", AccountIDValue(ctx))
	return fields
}
