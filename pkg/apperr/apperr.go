package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason = "reason"
	MetaStage  = "stage"
	MetaField  = "field"
	MetaLabel  = "label"
	MetaKind   = "kind"
	MetaIndex  = "index"
	MetaFrame  = "frame"
	MetaNodeID = "node_id"
	MetaURL    = "url"
	MetaValue  = "value"

	StageBrowser     = "browser"
	StageSnapshot    = "snapshot"
	StageResolution  = "resolution"
	StageNavigation  = "navigation"
	StageInteraction = "interaction"

	CodeInternal        = "internal"
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeTimeout         = "timeout"
	CodeBrowserNotReady = "browser_not_ready"
	CodeActionFailed    = "action_failed"
	CodeStaleElement    = "stale_element"
	CodeAssertionFailed = "assertion_failed"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, errors.New(reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

func NotFoundError(op string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata[MetaReason] = "not_found"

	return Wrap(op, CodeNotFound, err, metadata)
}

// CodeOf returns the code of the outermost *Error in err's chain, or "" when
// there is none.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return ""
}
