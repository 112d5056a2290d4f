package pipeline

import "errors"

// ErrDuplicateAgent is returned by Registry.Register when an agent with the
// same name already exists. Duplicate registration is a programming error,
// not a runtime condition, so it is never retried or swallowed.
var ErrDuplicateAgent = errors.New("pipeline: agent already registered")
