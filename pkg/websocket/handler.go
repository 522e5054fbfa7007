package websocket

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"social-system/config"
	"social-system/pkg/jwt"
	"social-system/pkg/redis"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// WsHandler 通知订阅入口
// GET /ws?user_id=U：为请求的通道建立订阅
// 任何已认证用户都可以为任意 user_id 建立订阅，但事件只会投递给
// 通道归属用户本人——订阅他人的通道不会报错，只会收不到任何事件
func WsHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	jwtCfg := c.MustGet("jwt_config").(config.JWTConfig) // 需在main.go注入
	jwtSvc := jwt.NewJWTService(jwtCfg)
	claims, err := jwtSvc.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	subscriberID, _ := strconv.ParseUint(claims.Subject, 10, 32)
	if subscriberID == 0 {
		response.Unauthorized(c, "token无效")
		return
	}

	// 订阅的通道归属用户，默认为订阅者自己
	channelUserID := uint(subscriberID)
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil || id == 0 {
			response.BadRequest(c, "invalid user_id")
			return
		}
		channelUserID = uint(id)
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		return
	}

	client := &Client{
		ChannelUserID: channelUserID,
		SubscriberID:  uint(subscriberID),
		Conn:          conn,
		Send:          make(chan []byte, 256),
	}
	GetManager().Subscribe(client)

	// 归属用户本人上线时更新Redis在线状态
	username := ""
	if claims.Data != nil {
		if u, ok := claims.Data["username"].(string); ok {
			username = u
		}
	}
	if client.SubscriberID == client.ChannelUserID {
		_ = redis.SetUserPresence(client.SubscriberID, username, "online")
	}

	defer func() {
		GetManager().Unsubscribe(client)

		if client.SubscriberID == client.ChannelUserID {
			_ = redis.SetUserPresence(client.SubscriberID, username, "offline")
		}
	}()

	// 从上下文读取心跳配置
	wsCfg := c.MustGet("ws_config").(config.WebSocketConfig)

	// 启动写协程 + 定时发送ping心跳
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(wsCfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					return
				}
				_ = conn.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
					close(done)
					return
				}
			}
		}
	}()

	// 读协程（接收心跳）。若超时未收到任何读事件则断开
	_ = conn.SetReadDeadline(time.Now().Add(wsCfg.ReadTimeout))
	conn.SetPongHandler(func(appData string) error {
		return conn.SetReadDeadline(time.Now().Add(wsCfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsCfg.ReadTimeout))
		if string(payload) == `{"type":"heartbeat"}` && client.SubscriberID == client.ChannelUserID {
			// 刷新用户在线状态（延长TTL）
			_ = redis.RefreshUserPresence(client.SubscriberID)
		}
	}
	select {
	case <-done:
	default:
		close(done)
	}
}
