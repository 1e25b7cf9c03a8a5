package queue

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"StreakKeeper/pkg/logger"
)

// BreakerState 熔断器状态
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // 正常工作
	BreakerOpen                         // 熔断中
	BreakerHalfOpen                     // 尝试恢复
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen 熔断期间直接拒绝
var ErrBreakerOpen = fmt.Errorf("circuit breaker is open")

// CircuitBreaker Broker 不可用时快速失败，避免每个打卡请求都等待发布超时
type CircuitBreaker struct {
	lastFailTime     time.Time
	now              func() time.Time
	name             string
	maxFailures      int
	resetTimeout     time.Duration
	halfOpenMaxCalls int

	mu            sync.Mutex
	state         BreakerState
	failures      int
	halfOpenCalls int
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		maxFailures:      maxFailures,
		resetTimeout:     resetTimeout,
		halfOpenMaxCalls: 1,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

// Call 执行带熔断保护的操作
func (cb *CircuitBreaker) Call(operation func() error) error {
	if !cb.allowRequest() {
		return fmt.Errorf("%s: %w", cb.name, ErrBreakerOpen)
	}

	err := operation()
	cb.recordResult(err)
	return err
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == BreakerOpen && cb.now().Sub(cb.lastFailTime) >= cb.resetTimeout {
		cb.transition(BreakerHalfOpen)
	}

	switch cb.state {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		if cb.halfOpenCalls >= cb.halfOpenMaxCalls {
			return false
		}
		cb.halfOpenCalls++
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == BreakerHalfOpen {
			cb.transition(BreakerClosed)
		}
		return
	}

	cb.failures++
	cb.lastFailTime = cb.now()

	logger.Logger.Warn("Guarded operation failed",
		zap.String("breaker", cb.name),
		zap.Int("failures", cb.failures),
		zap.String("state", cb.state.String()),
	)

	if cb.state == BreakerHalfOpen || cb.failures >= cb.maxFailures {
		cb.transition(BreakerOpen)
	}
}

func (cb *CircuitBreaker) transition(to BreakerState) {
	cb.state = to
	cb.halfOpenCalls = 0
	if to == BreakerClosed {
		cb.failures = 0
	}

	logger.Logger.Info("Circuit breaker state changed",
		zap.String("breaker", cb.name),
		zap.String("state", to.String()),
		zap.Duration("reset_timeout", cb.resetTimeout),
	)
}

// State 获取当前状态
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
