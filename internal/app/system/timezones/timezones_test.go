package timezones_test

import (
	"testing"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/timezones"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectedIDs(groups []timezones.Group) []string {
	var ids []string
	for _, g := range groups {
		for _, o := range g.Options {
			if o.Selected {
				ids = append(ids, o.ID)
			}
		}
	}
	return ids
}

func TestOptions_MarksSelected(t *testing.T) {
	groups := timezones.Options("America/Chicago")
	require.NotEmpty(t, groups)
	assert.Equal(t, []string{"America/Chicago"}, selectedIDs(groups))

	for i := 1; i < len(groups); i++ {
		assert.Less(t, groups[i-1].Region, groups[i].Region)
	}
	for _, g := range groups {
		for _, o := range g.Options {
			assert.NotEmpty(t, o.Label, o.ID)
			_, err := time.LoadLocation(o.ID)
			assert.NoError(t, err, o.ID)
		}
	}
}

func TestOptions_UnknownFallsBackToDefault(t *testing.T) {
	assert.Equal(t, []string{timezones.Default}, selectedIDs(timezones.Options("")))
	assert.Equal(t, []string{timezones.Default}, selectedIDs(timezones.Options("Mars/Olympus")))
}

func TestOptions_DoesNotLeakSelection(t *testing.T) {
	_ = timezones.Options("UTC")
	assert.Equal(t, []string{"America/Denver"}, selectedIDs(timezones.Options("America/Denver")))
}

func TestValid(t *testing.T) {
	assert.True(t, timezones.Valid(timezones.Default))
	assert.True(t, timezones.Valid("UTC"))
	assert.False(t, timezones.Valid(""))
	assert.False(t, timezones.Valid("Europe/Atlantis"))
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "America/Los_Angeles", timezones.Location("America/Los_Angeles").String())
	assert.Equal(t, time.UTC, timezones.Location("Not/AZone"))
}
