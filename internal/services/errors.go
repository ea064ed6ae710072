package services

// Typed service errors. Handlers translate these once, at the boundary, into
// the API error envelope; nothing below the handler layer writes HTTP status
// codes.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// AuthTokenError means the upstream completion endpoint rejected our
// credential. Retrying will not help; the deployment needs a new token.
type AuthTokenError struct{ Message string }

func (e *AuthTokenError) Error() string { return e.Message }

// UnavailableError means the completion endpoint answered with a bad-gateway
// class status after the retry budget was spent.
type UnavailableError struct{ Message string }

func (e *UnavailableError) Error() string { return e.Message }

// AIError is any other completion failure that survived the retry budget.
type AIError struct{ Message string }

func (e *AIError) Error() string { return e.Message }
