package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError("dataset", "Load", ErrServiceUnavailable, "dataset is not loaded", cause)

	assert.ErrorIs(t, err, ErrDatasetUnavailable)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "dataset.Load: dataset is not loaded: connection refused", err.Error())
}

func TestDomainError_WrappedWithFmt(t *testing.T) {
	err := fmt.Errorf("roster %q: %w", "Band", ErrProgramNotFound)

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.ErrorIs(t, err, ErrProgramNotFound)
	assert.NotErrorIs(t, err, ErrSchoolNotFound)
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsValidation(ErrInvalidFilter))
	assert.True(t, IsUnavailable(ErrMalformedDataset))
	assert.True(t, IsUnavailable(ErrDatasetHTTPStatus))
	assert.False(t, IsUnavailable(ErrSchoolNotFound))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindInternal},
		{errors.New("boom"), KindInternal},
		{ErrDatasetUnavailable, KindUnavailable},
		{fmt.Errorf("load: %w", ErrMalformedDataset), KindUnavailable},
		{ErrInvalidFilter, KindValidation},
		{ErrInvalidInput, KindValidation},
		{fmt.Errorf("roster: %w", ErrSchoolNotFound), KindNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), fmt.Sprint(tt.err))
	}
	assert.Equal(t, "not_found", KindNotFound.String())
}
