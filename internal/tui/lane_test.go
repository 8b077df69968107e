package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/typer/internal/layout"
)

func TestRenderLanePlacesNextTarget(t *testing.T) {
	m, _ := newTestModel(t, testConfig(1), &fakeStore{})
	obj := m.session.Objects()[0]
	label := obj.Judge.Target().Upper()

	out := m.renderLane(20, obj.Time-4*msPerColumn)
	assert.Contains(t, out, nextStyle.Render(label))
	assert.Contains(t, out, markerStyle.Render(hitMarker))
}

func TestRenderLaneHidesFarObjects(t *testing.T) {
	m, _ := newTestModel(t, testConfig(1), &fakeStore{})
	obj := m.session.Objects()[0]
	assert.Equal(t, -1, laneColumn(obj, obj.Time-time.Hour, 20))
	assert.Equal(t, hitColumn, laneColumn(obj, obj.Time, 20))
}

func TestRenderLaneShowsEcho(t *testing.T) {
	m, _ := newTestModel(t, testConfig(1), &fakeStore{})
	obj := m.session.Objects()[0]
	m.session.KeyDown(layout.ExpectedRawKey(obj.Judge.Target()), obj.Time-500*time.Millisecond)
	out := m.renderLane(30, obj.Time-500*time.Millisecond)
	assert.Contains(t, out, echoStyle.Render(obj.Judge.Target().Upper()))
}
