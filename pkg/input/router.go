package input

import "log"

// Claimant 输入事件的消费者
// HandleEvent 返回 true 表示认领该事件，后续消费者不会再收到
type Claimant interface {
	Name() string
	HandleEvent(ev Event) bool
}

// Suspender 由失去激活资格时需要清理状态的消费者实现
// 例如飞行控制需要松开所有按住的方向键
type Suspender interface {
	Suspend()
}

// Eligibility 根据 Activation 判断消费者是否可以接收事件
type Eligibility func(a Activation) bool

// Always 始终可接收
func Always(Activation) bool { return true }

// FlightEligible 仅在飞行激活时可接收
func FlightEligible(a Activation) bool { return a.FlightEligible }

// NavigationEligible 仅在导航激活时可接收
func NavigationEligible(a Activation) bool { return a.NavigationEligible }

type routeEntry struct {
	claimant Claimant
	eligible Eligibility
	active   bool
}

// Router 按注册顺序把事件分发给第一个认领它的消费者
//
// 每个事件分发前都会重新计算 Activation：
// 前一个事件引发的变化（例如聊天框获得焦点）对下一个事件立即生效。
type Router struct {
	entries  []*routeEntry
	evaluate func() Activation
	current  Activation
}

// NewRouter 创建路由器，evaluate 提供当前 Activation
func NewRouter(evaluate func() Activation) *Router {
	return &Router{evaluate: evaluate}
}

// Register 追加一个消费者，注册顺序即优先级
func (r *Router) Register(c Claimant, eligible Eligibility) {
	if eligible == nil {
		eligible = Always
	}
	r.entries = append(r.entries, &routeEntry{claimant: c, eligible: eligible, active: true})
	log.Printf("[InputRouter] Registered claimant #%d: %s", len(r.entries), c.Name())
}

// Refresh 重新计算 Activation 并通知失去资格的消费者
func (r *Router) Refresh() Activation {
	if r.evaluate != nil {
		r.current = r.evaluate()
	}
	for _, e := range r.entries {
		ok := e.eligible(r.current)
		if e.active && !ok {
			if s, isSuspender := e.claimant.(Suspender); isSuspender {
				s.Suspend()
			}
			log.Printf("[InputRouter] %s deactivated (room=%s modal=%v)", e.claimant.Name(), r.current.Room, r.current.Modal)
		}
		e.active = ok
	}
	return r.current
}

// Activation 返回最近一次计算的激活状态
func (r *Router) Activation() Activation {
	return r.current
}

// Route 分发单个事件，返回是否被认领；未认领的事件直接丢弃
func (r *Router) Route(ev Event) bool {
	r.Refresh()
	for _, e := range r.entries {
		if !e.active {
			continue
		}
		if e.claimant.HandleEvent(ev) {
			return true
		}
	}
	return false
}

// RouteAll 依次分发事件，返回被认领的数量
func (r *Router) RouteAll(events []Event) int {
	claimed := 0
	for _, ev := range events {
		if r.Route(ev) {
			claimed++
		}
	}
	return claimed
}
