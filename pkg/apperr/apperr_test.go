package apperr_test

import (
	"errors"
	"fmt"
	"labelfind/pkg/apperr"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_KeepsChain(t *testing.T) {
	sentinel := errors.New("boom")

	err := apperr.Wrap("Find", apperr.CodeNotFound, sentinel, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "Find: boom", err.Error())

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.NotNil(t, appErr.Metadata)
}

func TestNotFoundError_SetsReason(t *testing.T) {
	err := apperr.NotFoundError("Find", errors.New("missing"), map[string]any{
		apperr.MetaLabel: "Submit",
	})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "not_found", appErr.Metadata[apperr.MetaReason])
	assert.Equal(t, "Submit", appErr.Metadata[apperr.MetaLabel])
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", apperr.WrapErrorWithReason("Click", apperr.CodeActionFailed, "click_failed"))

	assert.Equal(t, apperr.CodeActionFailed, apperr.CodeOf(wrapped))
	assert.Empty(t, apperr.CodeOf(errors.New("plain")))
	assert.Empty(t, apperr.CodeOf(nil))
}
