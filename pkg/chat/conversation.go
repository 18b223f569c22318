package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultReplyTimeout 单次后端调用的超时时间
const DefaultReplyTimeout = 60 * time.Second

// ErrEmptyMessage 发送空白消息
var ErrEmptyMessage = errors.New("chat: message is empty")

// ErrClosed 对话已关闭
var ErrClosed = errors.New("chat: conversation closed")

// EmotionSink 接收回复中的情绪标签（companion.Inbox 实现了它）
// Report 可能在任意 goroutine 中被调用
type EmotionSink interface {
	Report(messageID, label string)
}

// SendHook 玩家发送消息时在主循环中同步调用
type SendHook func(text string)

// Conversation 与 Lexi 的一段对话
//
// Send 只在主循环中调用：它同步追加玩家消息和一条占位回复，
// 然后在独立 goroutine 中请求后端。回复返回后填充占位消息，
// 情绪标签交给 EmotionSink，不会直接修改伴侣状态。
type Conversation struct {
	backend Backend
	sink    EmotionSink
	timeout time.Duration

	mu       sync.Mutex
	messages []Message
	version  int
	inFlight int
	closed   bool

	hooks  []SendHook
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConversation 创建对话，timeout <= 0 时使用 DefaultReplyTimeout
func NewConversation(backend Backend, sink EmotionSink, timeout time.Duration) *Conversation {
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Conversation{
		backend: backend,
		sink:    sink,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnSend 注册发送钩子，按注册顺序调用
func (c *Conversation) OnSend(hook SendHook) {
	c.hooks = append(c.hooks, hook)
}

// AddMessage 直接追加一条消息，不请求后端（例如开场白）
func (c *Conversation) AddMessage(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(Message{ID: uuid.New(), Role: role, Content: content})
}

// Send 发送玩家消息，返回占位回复的 ID
func (c *Conversation) Send(text string) (uuid.UUID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return uuid.Nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return uuid.Nil, ErrClosed
	}
	c.appendLocked(Message{ID: uuid.New(), Role: RoleUser, Content: text})
	history := c.historyLocked()

	replyID := uuid.New()
	c.appendLocked(Message{ID: replyID, Role: RoleAgent, Pending: true})
	c.inFlight++
	c.wg.Add(1)
	c.mu.Unlock()

	for _, hook := range c.hooks {
		hook(text)
	}

	go c.complete(replyID, history)
	return replyID, nil
}

func (c *Conversation) complete(replyID uuid.UUID, history []Message) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	reply, err := c.backend.Reply(ctx, history)

	c.mu.Lock()
	c.inFlight--
	if err != nil {
		log.Printf("[Chat] Reply %s failed: %v", replyID, err)
		c.resolveLocked(replyID, func(m *Message) {
			m.Role = RoleSystem
			m.Content = "(Lexi is not responding. Check the comm link.)"
			if errors.Is(err, context.DeadlineExceeded) {
				m.Content = "(Lexi took too long to answer.)"
			}
		})
		c.mu.Unlock()
		return
	}
	c.resolveLocked(replyID, func(m *Message) {
		m.Content = strings.TrimSpace(reply.Text)
		m.Emotion = reply.Emotion
	})
	c.mu.Unlock()

	// 在锁外投递，sink 可能有自己的锁
	if reply.Emotion != "" && c.sink != nil {
		c.sink.Report(replyID.String(), reply.Emotion)
	}
}

// Messages 返回对话副本（旧 -> 新）
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Version 对话每次变化都会递增，界面据此决定是否重新排版
func (c *Conversation) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Pending 报告是否有尚未返回的回复
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Wait 等待所有进行中的后端调用结束
func (c *Conversation) Wait() {
	c.wg.Wait()
}

// Close 取消进行中的调用并等待它们结束，之后 Send 返回 ErrClosed
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Conversation) appendLocked(m Message) {
	c.messages = append(c.messages, m)
	c.version++
}

func (c *Conversation) resolveLocked(id uuid.UUID, fn func(m *Message)) {
	for i := range c.messages {
		if c.messages[i].ID == id {
			fn(&c.messages[i])
			c.messages[i].Pending = false
			c.version++
			return
		}
	}
}

// historyLocked 返回发给后端的历史：跳过占位消息和系统提示
func (c *Conversation) historyLocked() []Message {
	out := make([]Message, 0, len(c.messages))
	for _, m := range c.messages {
		if m.Pending || m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
