package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverToOwnerOnly(t *testing.T) {
	m := NewManager()

	owner := &Client{ChannelUserID: 1, SubscriberID: 1, Send: make(chan []byte, 4)}
	foreign := &Client{ChannelUserID: 1, SubscriberID: 2, Send: make(chan []byte, 4)}
	m.Subscribe(owner)
	m.Subscribe(foreign)
	defer m.Unsubscribe(owner)
	defer m.Unsubscribe(foreign)

	delivered := m.Deliver(1, []byte("hello"))
	assert.Equal(t, 1, delivered)

	require.Len(t, owner.Send, 1)
	assert.Equal(t, "hello", string(<-owner.Send))
	assert.Empty(t, foreign.Send)
}

func TestDeliverNoSubscribers(t *testing.T) {
	m := NewManager()
	assert.Equal(t, 0, m.Deliver(1, []byte("hello")))
}

func TestDeliverOnlyForeignSubscribers(t *testing.T) {
	m := NewManager()

	// 通道上只有别人的订阅：投递数为0，调用方据此落盘离线通知
	foreign := &Client{ChannelUserID: 1, SubscriberID: 2, Send: make(chan []byte, 4)}
	m.Subscribe(foreign)
	defer m.Unsubscribe(foreign)

	assert.Equal(t, 0, m.Deliver(1, []byte("hello")))
}

func TestDeliverMultipleOwnerDevices(t *testing.T) {
	m := NewManager()

	// 同一用户多端在线：每个本人订阅都收到
	a := &Client{ChannelUserID: 1, SubscriberID: 1, Send: make(chan []byte, 4)}
	b := &Client{ChannelUserID: 1, SubscriberID: 1, Send: make(chan []byte, 4)}
	m.Subscribe(a)
	m.Subscribe(b)
	defer m.Unsubscribe(a)
	defer m.Unsubscribe(b)

	assert.Equal(t, 2, m.Deliver(1, []byte("hello")))
}

func TestOwnerOnline(t *testing.T) {
	m := NewManager()
	assert.False(t, m.OwnerOnline(1))

	foreign := &Client{ChannelUserID: 1, SubscriberID: 2, Send: make(chan []byte, 4)}
	m.Subscribe(foreign)
	assert.False(t, m.OwnerOnline(1))

	owner := &Client{ChannelUserID: 1, SubscriberID: 1, Send: make(chan []byte, 4)}
	m.Subscribe(owner)
	assert.True(t, m.OwnerOnline(1))

	m.Unsubscribe(owner)
	assert.False(t, m.OwnerOnline(1))
	m.Unsubscribe(foreign)
}

func TestReplaySendRespectsSubscription(t *testing.T) {
	m := NewManager()
	c := &Client{ChannelUserID: 1, SubscriberID: 1, Send: make(chan []byte, 4)}
	m.Subscribe(c)
	assert.True(t, m.trySend(c, []byte("replay")))

	// 取消订阅后通道已关闭，补推发送必须被跳过而不是崩溃
	m.Unsubscribe(c)
	assert.False(t, m.trySend(c, []byte("late")))
}

func TestReplayConcurrentWithUnsubscribe(t *testing.T) {
	// 补推goroutine与断开并发执行时不允许向已关闭通道发送
	for i := 0; i < 200; i++ {
		m := NewManager()
		c := &Client{ChannelUserID: 1, SubscriberID: 1, Send: make(chan []byte, 8)}
		m.Subscribe(c)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 8; j++ {
				if !m.trySend(c, []byte("replay")) {
					return
				}
			}
		}()
		m.Unsubscribe(c)
		<-done
	}
}

func TestUnsubscribeClosesSend(t *testing.T) {
	m := NewManager()
	c := &Client{ChannelUserID: 1, SubscriberID: 1, Send: make(chan []byte, 4)}
	m.Subscribe(c)
	m.Unsubscribe(c)

	_, open := <-c.Send
	assert.False(t, open)

	// 重复取消订阅是空操作
	m.Unsubscribe(c)
}
