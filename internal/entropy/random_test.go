package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientReturnsNilWithoutAPIKey(t *testing.T) {
	assert.Nil(t, NewClient(""))
}

func TestNilClientEnabledIsFalse(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
}

func TestFloatFromSourceFallsBackToCryptoRandWithoutClient(t *testing.T) {
	v := FloatFromSource(nil)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestCryptoFloatStaysWithinUnitRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := CryptoFloat()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
