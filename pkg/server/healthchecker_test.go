package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositeHealthChecker(t *testing.T) {
	ctx := context.Background()
	down := PingHealthChecker(func(context.Context) error { return errors.New("down") })
	up := PingHealthChecker(func(context.Context) error { return nil })

	assert.True(t, NewCompositeHealthChecker().Healthy(ctx))
	assert.True(t, NewCompositeHealthChecker(up, NewOkHealthChecker()).Healthy(ctx))
	assert.False(t, NewCompositeHealthChecker(up, down).Healthy(ctx))
}
