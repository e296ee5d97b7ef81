package behavior_test

import (
	"testing"

	"github.com/fwojciec/unfold/behavior"
	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	t.Parallel()

	tr := behavior.NewTracker()
	assert.False(t, tr.Seen("href:/p/2"))

	tr.Mark("href:/p/2")
	tr.Mark("href:/p/2")
	tr.Mark("text:Next")

	assert.True(t, tr.Seen("href:/p/2"))
	assert.True(t, tr.Seen("text:Next"))
	assert.False(t, tr.Seen("text:next"))
	assert.Equal(t, 2, tr.Len())
}
