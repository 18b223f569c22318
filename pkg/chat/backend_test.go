package chat

import (
	"context"
	"testing"
	"time"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `
greeting: "online"
rules:
  - keywords: [hi, "hull breach"]
    emotion: friendly
    replies: ["hello one", "hello two"]
  - keywords: [cute]
    emotion: flirtatious
    replies: ["stop it"]
  - keywords: ["What's up", "status?"]
    emotion: curious
    replies: ["all quiet"]
fallback:
  emotion: calm
  replies: ["noted"]
`

func newTestBackend(t *testing.T) *ScriptedBackend {
	t.Helper()
	script, err := config.ParseChatScriptConfig([]byte(testScript))
	require.NoError(t, err)
	return NewScriptedBackend(script)
}

func userSays(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

func TestScriptedBackendMatching(t *testing.T) {
	tests := []struct {
		name    string
		message string
		emotion string
		text    string
	}{
		{"关键字命中", "Hi Lexi!", "friendly", "hello one"},
		{"多词关键字", "We have a HULL breach!!", "friendly", "hello one"},
		{"单词边界", "this is fine", "calm", "noted"},
		{"别名标签原样返回", "you are cute", "flirtatious", "stop it"},
		{"未命中使用 fallback", "plot a course", "calm", "noted"},
		{"带撇号的关键字", "What's up?", "curious", "all quiet"},
		{"关键字末尾标点", "status report", "curious", "all quiet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t)
			reply, err := b.Reply(context.Background(), userSays(tt.message))
			require.NoError(t, err)
			assert.Equal(t, tt.emotion, reply.Emotion)
			assert.Equal(t, tt.text, reply.Text)
		})
	}
}

func TestScriptedBackendRotatesReplies(t *testing.T) {
	b := newTestBackend(t)
	var got []string
	for i := 0; i < 3; i++ {
		reply, err := b.Reply(context.Background(), userSays("hi"))
		require.NoError(t, err)
		got = append(got, reply.Text)
	}
	assert.Equal(t, []string{"hello one", "hello two", "hello one"}, got)
}

func TestScriptedBackendRepliesToLastUserMessage(t *testing.T) {
	b := newTestBackend(t)
	history := []Message{
		{Role: RoleUser, Content: "you are cute"},
		{Role: RoleAgent, Content: "stop it"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAgent, Content: "cute cute cute"},
	}
	reply, err := b.Reply(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "friendly", reply.Emotion)
}

func TestScriptedBackendNoUserMessage(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.Reply(context.Background(), []Message{{Role: RoleAgent, Content: "hello"}})
	assert.ErrorIs(t, err, ErrNoUserMessage)
}

func TestScriptedBackendHonorsContext(t *testing.T) {
	b := newTestBackend(t)
	b.Delay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := b.Reply(ctx, userSays("hi"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestShippedChatScript(t *testing.T) {
	script, err := config.LoadChatScriptConfig(config.ChatScriptConfigPath)
	require.NoError(t, err)
	require.NotEmpty(t, script.Rules)
	assert.NotEmpty(t, script.Greeting)

	for _, r := range append(script.Rules, script.Fallback) {
		assert.NotEqual(t, companion.EmotionUnknown, companion.ParseEmotion(r.Emotion), "rule emotion %q", r.Emotion)
	}

	b := NewScriptedBackend(script)
	reply, err := b.Reply(context.Background(), userSays("Give me a status report"))
	require.NoError(t, err)
	assert.Equal(t, companion.EmotionProfessional, companion.ParseEmotion(reply.Emotion))
}

func TestChatScriptValidation(t *testing.T) {
	_, err := config.ParseChatScriptConfig([]byte(`
rules:
  - keywords: []
    emotion: grumpy
    replies: []
fallback:
  emotion: calm
  replies: ["ok"]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no keywords")
	assert.Contains(t, err.Error(), "no replies")
	assert.Contains(t, err.Error(), `unrecognized emotion "grumpy"`)
}
