package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gonewx/slaglegion/pkg/config"
)

// ErrNoUserMessage 历史中没有可回复的玩家消息
var ErrNoUserMessage = errors.New("chat: no user message to reply to")

// ScriptedBackend 离线对话后端：按关键字脚本回复
//
// 随二进制发布，不依赖网络。Delay 模拟模型的思考时间，
// 期间 ctx 被取消则返回 ctx.Err()。
type ScriptedBackend struct {
	script *config.ChatScriptConfig
	Delay  time.Duration

	mu   sync.Mutex
	turn map[int]int // 规则索引 -> 下一条回复（-1 为 fallback）
}

// NewScriptedBackend 创建脚本后端
func NewScriptedBackend(script *config.ChatScriptConfig) *ScriptedBackend {
	return &ScriptedBackend{
		script: script,
		turn:   make(map[int]int),
	}
}

// Greeting 返回开场白
func (b *ScriptedBackend) Greeting() string {
	return b.script.Greeting
}

// Reply 实现 Backend
func (b *ScriptedBackend) Reply(ctx context.Context, history []Message) (Reply, error) {
	last := lastUserMessage(history)
	if last == "" {
		return Reply{}, ErrNoUserMessage
	}

	if b.Delay > 0 {
		timer := time.NewTimer(b.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	idx, rule := b.match(last)
	return Reply{Text: b.next(idx, rule), Emotion: rule.Emotion}, nil
}

// match 返回第一条命中的规则，-1 表示 fallback
func (b *ScriptedBackend) match(message string) (int, config.ScriptRule) {
	padded := " " + config.NormalizeChatText(message) + " "
	for i, r := range b.script.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return i, r
			}
		}
	}
	return -1, b.script.Fallback
}

func (b *ScriptedBackend) next(idx int, rule config.ScriptRule) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.turn[idx]
	b.turn[idx] = (n + 1) % len(rule.Replies)
	return rule.Replies[n%len(rule.Replies)]
}

func lastUserMessage(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content
		}
	}
	return ""
}
