package e

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBadRequest(t *testing.T) {
	assert.True(t, IsBadRequest(Wrap("op", ErrInsufficientStock)))
	assert.True(t, IsBadRequest(Wrap("outer", Wrap("inner", ErrInvalidProductName))))
	assert.False(t, IsBadRequest(errors.New("connection refused")))
	assert.False(t, IsBadRequest(ErrInternalServerError))
	assert.False(t, IsBadRequest(nil))
}

func TestWrap(t *testing.T) {
	err := Wrap("InventoryUseCase.Sell", ErrProductNotFound)
	assert.EqualError(t, err, "InventoryUseCase.Sell: product not found")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
