package companion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecayTimer(t *testing.T) {
	clock, s := newTestState()
	decay := NewDecayTimer(s, DefaultDecayTimeout)

	var sources []Source
	s.Subscribe(func(_ Snapshot, c Change) { sources = append(sources, c.Source) })

	require.True(t, s.UpdateEmotion(EmotionHappy, SourceChat))

	clock.Advance(119)
	assert.False(t, decay.Update())
	assert.Equal(t, EmotionHappy, s.Snapshot().Emotion)
	assert.InDelta(t, 1.0, decay.Remaining(), 1e-9)

	clock.Advance(2)
	assert.True(t, decay.Update())
	assert.Equal(t, EmotionNeutral, s.Snapshot().Emotion)
	assert.Equal(t, []Source{SourceChat, SourceDecay}, sources)
	assert.Zero(t, decay.Remaining())

	// 已经是 neutral 时不再通知
	clock.Advance(500)
	assert.False(t, decay.Update())
	assert.Len(t, sources, 2)
}

func TestDecayNotResetByRepeatedEmotion(t *testing.T) {
	clock, s := newTestState()
	decay := NewDecayTimer(s, 0)
	require.Equal(t, DefaultDecayTimeout, decay.Timeout())

	s.UpdateEmotion(EmotionExcited, SourceChat)
	for i := 0; i < 12; i++ {
		clock.Advance(10)
		s.UpdateEmotion(EmotionExcited, SourceChat)
		decay.Update()
	}

	assert.Equal(t, EmotionNeutral, s.Snapshot().Emotion)
}

func TestDecayIgnoresPose(t *testing.T) {
	clock, s := newTestState()
	decay := NewDecayTimer(s, 60)

	s.UpdateEmotion(EmotionSad, SourceChat)
	clock.Advance(50)
	s.UpdatePose(PoseStanding)
	clock.Advance(11)

	require.True(t, decay.Update())
	snap := s.Snapshot()
	assert.Equal(t, EmotionNeutral, snap.Emotion)
	assert.Equal(t, PoseStanding, snap.Pose, "姿势不会随衰减恢复")
}
