package cronmanager

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJobs(t *testing.T) {
	cm := NewCronManager(JobRegistry{
		"sessions_clean": {Func: func() {}, Schedule: "@every 1m"},
		"broken":         {Func: func() {}, Schedule: "not a schedule"},
		"empty":          {Schedule: "@every 1m"},
	})

	require.NoError(t, cm.LoadJobs())
	assert.Equal(t, []string{"sessions_clean"}, cm.Jobs())

	require.NoError(t, cm.LoadJobs())
	assert.Len(t, cm.Jobs(), 1)

	cm.RemoveJob("sessions_clean")
	assert.Empty(t, cm.Jobs())
}

func TestLoadJobsAllInvalid(t *testing.T) {
	cm := NewCronManager(JobRegistry{
		"broken": {Func: func() {}, Schedule: "61 * * * *"},
	})
	assert.Error(t, cm.LoadJobs())
}

func TestRunJobs(t *testing.T) {
	var calls atomic.Int32
	cm := NewCronManager(JobRegistry{
		"tick": {Func: func() { calls.Add(1) }, Schedule: "@every 1s"},
	})
	require.NoError(t, cm.LoadJobs())

	cm.Start()
	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	cm.Stop()
}
