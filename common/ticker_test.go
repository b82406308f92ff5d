package common_test

import (
	"testing"
	"time"

	"github.com/ngicks/gapsched/common"
	"github.com/stretchr/testify/require"
)

func TestTicker(t *testing.T) {
	ticker := common.NewTickerImpl(10 * time.Millisecond)

	start := time.Now()
	<-ticker.GetChan()
	<-ticker.GetChan()
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	ticker.Stop()
	select {
	case <-ticker.GetChan():
		t.Fatalf("must not emit after Stop")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestGetNow(t *testing.T) {
	before := time.Now()
	now := common.GetNowImpl{}.GetNow()
	require.False(t, now.Before(before))
}
