package companion

import (
	"log"
	"sync"
)

// EmotionReport 聊天后端对一条回复的情绪分析结果
type EmotionReport struct {
	MessageID string // 对应的聊天消息 ID，可为空
	Label     string // 后端原始标签，尚未映射到枚举
}

// Inbox 后端结果的单消费者队列
//
// 后端调用可以在任意 goroutine 中完成并 Report；
// 主循环每帧在读取任何状态之前调用一次 Drain。
type Inbox struct {
	mu      sync.Mutex
	pending []EmotionReport
}

// NewInbox 创建空队列
func NewInbox() *Inbox {
	return &Inbox{}
}

// Report 投递一条情绪标签（并发安全）
func (q *Inbox) Report(messageID, label string) {
	q.mu.Lock()
	q.pending = append(q.pending, EmotionReport{MessageID: messageID, Label: label})
	q.mu.Unlock()
}

// Drain 取出并清空所有待处理结果，按到达顺序返回
func (q *Inbox) Drain() []EmotionReport {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// Len 返回待处理数量
func (q *Inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Deliver 把一帧内收到的结果应用到状态
//
// 同一帧的多条结果合并为一次变更：只应用最后一条可识别的标签，
// 更早的结果已被覆盖。无法识别的标签只记录日志。
// 返回 true 表示状态发生了变化。
func Deliver(state *State, reports []EmotionReport) bool {
	latest := EmotionUnknown
	for _, r := range reports {
		e := ParseEmotion(r.Label)
		if e == EmotionUnknown {
			log.Printf("[CompanionInbox] Unrecognized emotion label %q (message %s), ignored", r.Label, r.MessageID)
			continue
		}
		latest = e
	}
	if latest == EmotionUnknown {
		return false
	}
	return state.UpdateEmotion(latest, SourceChat)
}
