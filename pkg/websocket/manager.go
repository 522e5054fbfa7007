package websocket

import (
	"encoding/json"
	"sync"

	"social-system/pkg/redis"

	"github.com/gorilla/websocket"
)

// Client 代表一个通知通道订阅
// ChannelUserID: 订阅的通道归属用户（订阅请求里的 user_id）
// SubscriberID: 订阅者自己的身份（来自JWT）
// 两者可以不同：订阅别人的通道不会报错，但永远收不到事件
type Client struct {
	ChannelUserID uint
	SubscriberID  uint
	Conn          *websocket.Conn
	Send          chan []byte
}

// Manager 管理所有通知通道订阅
// 投递门：事件只投递给 SubscriberID 等于事件目标用户的订阅，
// 订阅他人通道的客户端被静默跳过——这是对外契约的一部分，
// 不要改成显式报错
type Manager struct {
	channels map[uint]map[*Client]struct{} // 通道归属用户ID -> 订阅集合
	lock     sync.RWMutex
}

var manager = NewManager()

// GetManager 获取全局通知通道管理器
func GetManager() *Manager {
	return manager
}

// NewManager 创建通知通道管理器
func NewManager() *Manager {
	return &Manager{
		channels: make(map[uint]map[*Client]struct{}),
	}
}

// Subscribe 建立订阅
// 归属用户本人订阅自己的通道时，补推Redis中的离线通知
func (m *Manager) Subscribe(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	subs, ok := m.channels[client.ChannelUserID]
	if !ok {
		subs = make(map[*Client]struct{})
		m.channels[client.ChannelUserID] = subs
	}
	subs[client] = struct{}{}

	if client.SubscriberID == client.ChannelUserID {
		go m.pushOfflineNotifications(client)
	}
}

// Unsubscribe 取消订阅并关闭发送通道
func (m *Manager) Unsubscribe(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if subs, ok := m.channels[client.ChannelUserID]; ok {
		if _, exists := subs[client]; exists {
			close(client.Send)
			delete(subs, client)
		}
		if len(subs) == 0 {
			delete(m.channels, client.ChannelUserID)
		}
	}
}

// Deliver 投递事件到目标用户的通知通道
// 返回实际投递的订阅数；返回0表示归属用户当前没有活跃通道
func (m *Manager) Deliver(userID uint, msg []byte) int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	delivered := 0
	for client := range m.channels[userID] {
		// 投递门：只投给归属用户本人的订阅
		if client.SubscriberID != userID {
			continue
		}
		select {
		case client.Send <- msg:
			delivered++
		default:
			// 发送缓冲已满，可能连接已断开
		}
	}
	return delivered
}

// OwnerOnline 判断归属用户本人是否有活跃订阅
func (m *Manager) OwnerOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.channels[userID] {
		if client.SubscriberID == userID {
			return true
		}
	}
	return false
}

// pushOfflineNotifications 补推离线通知
// 补推与断开是并发的：每次发送都必须经过 trySend，
// 在锁内确认订阅仍然存在，否则会撞上 Unsubscribe 关闭的通道
func (m *Manager) pushOfflineNotifications(client *Client) {
	// 从Redis获取离线通知
	notifications, err := redis.GetOfflineNotifications(client.ChannelUserID, 50) // 最多补推50条
	if err != nil {
		return
	}

	for _, n := range notifications {
		data, err := json.Marshal(map[string]interface{}{
			"type":       "offline_notification",
			"event_type": n.Type,
			"user_id":    n.UserID,
			"actor_id":   n.ActorID,
			"post_id":    n.PostID,
			"message":    n.Message,
			"created_at": n.CreatedAt.Format("2006-01-02 15:04:05"),
		})
		if err != nil {
			continue
		}

		if !m.trySend(client, data) {
			// 订阅已取消或发送缓冲已满，停止补推
			return
		}
	}

	// 补推完成后清空离线通知和角标计数
	_ = redis.ClearOfflineNotifications(client.ChannelUserID)
	_ = redis.ResetBadgeCount(client.ChannelUserID)
}

// trySend 仅当订阅仍然注册时投递
// Unsubscribe 在写锁内关闭 Send，这里在读锁内先确认成员资格再发送，
// 保证不会向已关闭的通道发送
func (m *Manager) trySend(client *Client, msg []byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if _, ok := m.channels[client.ChannelUserID][client]; !ok {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		return false
	}
}
