package dberrors

import (
	cerr "github.com/pip-services3-gox/pip-services3-commons-gox/errors"
)

// NormalizedError wraps the closed taxonomy of spec §4.4/§7 around a
// pip-services ApplicationError, the same error representation the teacher
// uses throughout (cerr.NewConnectionError, cerr.NewConfigError, ...).
type NormalizedError struct {
	*cerr.ApplicationError
	Kind      Kind
	Retryable bool
	// Message is the exact operation-specific user message from spec §4.4,
	// kept separate from ApplicationError.Error()'s own formatting.
	Message string
}

var operationMessages = map[Kind]map[Operation]string{
	KindDuplicateKey: {
		OpInsert: "The record cannot be created because a record with the same unique information already exists.",
		OpUpdate: "The record cannot be updated because another record with the same unique information already exists.",
	},
	KindForeignKey: {
		OpDelete: "The record cannot be deleted because it has related data in other tables.",
	},
}

// Normalize maps a raw driver error plus the operation it occurred under
// into the closed (kind, userMessage, retryable) taxonomy of spec §4.4.
func Normalize(correlationId string, driverErr error, operation Operation) *NormalizedError {
	facts := extract(driverErr)
	kind := classify(facts)

	message := userMessage(kind, operation, facts.message)

	var appErr *cerr.ApplicationError
	switch kind {
	case KindDuplicateKey, KindForeignKey:
		appErr = cerr.NewConflictError(correlationId, string(kind), message).WithCause(driverErr)
	case KindTransient:
		appErr = cerr.NewConnectionError(correlationId, "TRANSIENT", message).WithCause(driverErr)
		appErr = appErr.WithDetails("retryable", true)
	default:
		appErr = cerr.NewUnknownError(correlationId, "OPERATION_FAILED", message).WithCause(driverErr)
	}
	appErr = appErr.WithDetails("kind", string(kind))

	return &NormalizedError{
		ApplicationError: appErr,
		Kind:             kind,
		Retryable:        kind == KindTransient,
		Message:          message,
	}
}

func userMessage(kind Kind, op Operation, original string) string {
	if byOp, ok := operationMessages[kind]; ok {
		if msg, ok := byOp[op]; ok {
			return msg
		}
	}
	switch kind {
	case KindTransient:
		return string(op) + " failed: " + original
	default:
		return string(op) + " operation failed: " + original
	}
}
