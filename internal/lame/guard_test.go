package lame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard(t *testing.T) {
	errTest := errors.New("test error")
	assert.NoError(t, guard(func() error { return nil }))
	assert.Equal(t, errTest, guard(func() error { return errTest }))

	// negative return code of the library slices out of range.
	err := guard(func() error {
		out := make([]byte, 10)
		n := -3
		_ = out[0:n]
		return nil
	})
	assert.Error(t, err)
}
