// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package promise_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.chatrelay.io/chatrelay/promise"
)

func TestArmFulfil_DeliversValueToWaiter(t *testing.T) {
	tbl := promise.New()
	waiter := tbl.Arm(1)

	tbl.Fulfil(1, "y")

	select {
	case v := <-waiter:
		assert.Equal(t, "y", v)
	case <-time.After(time.Second):
		t.Fatal("waiter never received a value")
	}
	assert.False(t, tbl.Armed(1))
}

func TestFulfil_NoArmedPromise_DropsSilently(t *testing.T) {
	tbl := promise.New()
	assert.NotPanics(t, func() { tbl.Fulfil(42, "y") })
}

func TestArm_AtMostOneArmedPerClient(t *testing.T) {
	tbl := promise.New()
	first := tbl.Arm(1)
	second := tbl.Arm(1)
	require.True(t, tbl.Armed(1))

	tbl.Fulfil(1, "n")

	select {
	case v := <-second:
		assert.Equal(t, "n", v)
	case <-time.After(time.Second):
		t.Fatal("second waiter never received a value")
	}

	select {
	case <-first:
		t.Fatal("first (overwritten) waiter should never be fulfilled")
	default:
	}
}

func TestDisarm_RemovesWithoutFulfilling(t *testing.T) {
	tbl := promise.New()
	waiter := tbl.Arm(1)
	tbl.Disarm(1)
	assert.False(t, tbl.Armed(1))

	select {
	case <-waiter:
		t.Fatal("disarmed waiter must not be fulfilled")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDisconnectSentinel_UnblocksWaiter(t *testing.T) {
	tbl := promise.New()
	waiter := tbl.Arm(7)
	tbl.Fulfil(7, promise.Disconnected)

	select {
	case v := <-waiter:
		assert.Equal(t, promise.Disconnected, v)
	case <-time.After(time.Second):
		t.Fatal("waiter never unblocked on disconnect")
	}
}
