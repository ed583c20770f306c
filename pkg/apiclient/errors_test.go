package apiclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorMessages(t *testing.T) {
	withStatus := &APIError{Message: "not found", Status: 404}
	assert.Equal(t, "api error (status 404): not found", withStatus.Error())

	cause := errors.New("dial tcp: connection refused")
	network := &APIError{Message: NetworkErrorMessage, Code: CodeNetwork, Err: cause}
	assert.Contains(t, network.Error(), NetworkErrorMessage)
	assert.ErrorIs(t, network, cause)
}

func TestStatusOfFollowsWrapping(t *testing.T) {
	err := fmt.Errorf("list rules: %w", &APIError{Status: 403})
	assert.Equal(t, 403, StatusOf(err))
	assert.Zero(t, StatusOf(errors.New("plain")))
	assert.Zero(t, StatusOf(nil))
}
