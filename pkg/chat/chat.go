// Package chat 管理与 Lexi 的对话
//
// 对话后端（Backend）在独立的 goroutine 中调用，结果中的情绪标签投递到
// companion.Inbox，由主循环在下一帧统一应用。
package chat

import (
	"context"

	"github.com/google/uuid"
)

// 消息角色
const (
	RoleUser   = "user"      // 玩家（船长）
	RoleAgent  = "assistant" // Lexi
	RoleSystem = "system"    // 系统提示（连接失败等）
)

// Message 对话中的一条消息
type Message struct {
	ID      uuid.UUID
	Role    string
	Content string
	Emotion string // 后端给出的原始情绪标签，只有 Lexi 的回复才有
	Pending bool   // 回复尚未返回
}

// Reply 后端的一次回复
type Reply struct {
	Text    string
	Emotion string // 未经映射的情绪标签，例如 "flirtatious"
}

// Backend 对话后端
//
// Reply 可能耗时较长，必须遵守 ctx 的取消与超时。
// history 是调用时刻的对话快照（不含尚未返回的占位消息）。
type Backend interface {
	Reply(ctx context.Context, history []Message) (Reply, error)
}

// BackendFunc 把普通函数适配为 Backend
type BackendFunc func(ctx context.Context, history []Message) (Reply, error)

// Reply 实现 Backend
func (f BackendFunc) Reply(ctx context.Context, history []Message) (Reply, error) {
	return f(ctx, history)
}
