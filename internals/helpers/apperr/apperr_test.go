// file: internals/helpers/apperr/apperr_test.go
package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 422, HTTPStatus(KindValidation))
	assert.Equal(t, 403, HTTPStatus(KindAuthorization))
	assert.Equal(t, 409, HTTPStatus(KindConflict))
	assert.Equal(t, 404, HTTPStatus(KindNotFound))
	assert.Equal(t, 502, HTTPStatus(KindDependency))
}

func TestIsKind(t *testing.T) {
	err := Conflict("already submitted")
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(errors.New("plain"), KindConflict))
	assert.False(t, IsKind(nil, KindConflict))
}

func TestIsKind_Wrapped(t *testing.T) {
	err := fmt.Errorf("submit: %w", NotFound("evaluation not found"))
	assert.True(t, IsKind(err, KindNotFound))
}
