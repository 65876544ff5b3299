package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/jrsteele09/go-mail-server/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapf(t *testing.T) {
	assert.NoError(t, errors.Wrapf(nil, "statement %d", 1))

	err := errors.Wrapf(errors.ErrConflict, "statement %d", 3)
	assert.EqualError(t, err, "statement 3: conflict")
	assert.True(t, stderrors.Is(err, errors.ErrConflict))
}
