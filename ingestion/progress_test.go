package ingestion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reports(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "Adding documents", 100, 10)

	tracker.Start()
	tracker.Add(25)
	tracker.Add(25)
	tracker.Add(50)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "Adding documents: 100/100 (100.0%)")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestProgressTracker_Interval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "load", 100, 50)

	tracker.Start()
	tracker.Add(10)
	assert.Empty(t, buf.String())

	tracker.Add(40)
	assert.Contains(t, buf.String(), "50/100")
}

func TestProgressTracker_PartialFinish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "load", 100, 10)

	tracker.Start()
	tracker.Add(30)
	tracker.Finish()

	assert.Contains(t, buf.String(), "30/100 (30.0%)")
	assert.NotContains(t, buf.String(), "100/100")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "load", 10, 1)

	tracker.Start()
	tracker.Add(15)

	assert.Contains(t, buf.String(), "10/10")
	assert.NotContains(t, buf.String(), "15/10")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "load", 0, 10)

	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 (100.0%)")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "load", 10, 1)

	tracker.Add(5)
	tracker.Finish()

	assert.Empty(t, buf.String())
}
