package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	for _, v := range []float64{0, 1, -0.1, 1.5} {
		err := Validate(v)
		assert.Error(t, err, "value %v must be rejected", v)
	}
	for _, v := range []float64{0.01, 0.5, 0.99} {
		assert.NoError(t, Validate(v), "value %v must be accepted", v)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Validate(1.5)
	assert.EqualError(t, err, "confidence must be strictly between 0 and 1, got 1.5")
}
