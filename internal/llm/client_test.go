package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientReturnsNilWithoutAPIKey(t *testing.T) {
	assert.Nil(t, NewClient(""))
}

func TestNewClientEnabledWithAPIKey(t *testing.T) {
	c := NewClient("sk-test-key")
	require.NotNil(t, c)
	assert.True(t, c.Enabled())
}

func TestNilClientEnabledIsFalse(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
}

func TestCompleteWithUsageRejectsDisabledClient(t *testing.T) {
	var c *Client
	_, _, _, err := c.completeWithUsage("sys", "hi", 100)
	assert.Error(t, err)
}
