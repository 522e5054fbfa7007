package service

import (
	"encoding/json"
	"testing"
	"time"

	"social-system/config"
	"social-system/internal/errs"
	"social-system/pkg/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeTrigger(t *testing.T) {
	svc := NewNotificationService(websocket.NewManager(), config.NotificationConfig{InternalSecret: "s3cret"})

	require.NoError(t, svc.AuthorizeTrigger("s3cret"))

	err := svc.AuthorizeTrigger("wrong")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))

	err = svc.AuthorizeTrigger("")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))
}

func TestAuthorizeTriggerUnconfigured(t *testing.T) {
	// 密钥未配置时一律拒绝，包括空对空
	svc := NewNotificationService(websocket.NewManager(), config.NotificationConfig{})

	err := svc.AuthorizeTrigger("")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))
	err = svc.AuthorizeTrigger("anything")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))
}

func TestTriggerDeliversToOwner(t *testing.T) {
	manager := websocket.NewManager()
	svc := NewNotificationService(manager, config.NotificationConfig{})

	owner := &websocket.Client{ChannelUserID: 7, SubscriberID: 7, Send: make(chan []byte, 4)}
	manager.Subscribe(owner)
	defer manager.Unsubscribe(owner)

	svc.Trigger(&NotificationEvent{
		Type:    NotificationFollowed,
		UserID:  7,
		ActorID: 3,
		Message: "bob followed you",
	})

	select {
	case raw := <-owner.Send:
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, NotificationFollowed, payload["type"])
		assert.Equal(t, float64(7), payload["user_id"])
		assert.Equal(t, float64(3), payload["actor_id"])
	case <-time.After(time.Second):
		t.Fatal("owner did not receive the event")
	}
}

func TestTriggerSkipsForeignSubscriber(t *testing.T) {
	manager := websocket.NewManager()
	svc := NewNotificationService(manager, config.NotificationConfig{})

	// 用户3订阅了用户7的通道：不报错，但永远收不到事件
	eavesdropper := &websocket.Client{ChannelUserID: 7, SubscriberID: 3, Send: make(chan []byte, 4)}
	manager.Subscribe(eavesdropper)
	defer manager.Unsubscribe(eavesdropper)

	svc.Trigger(&NotificationEvent{
		Type:    NotificationFollowed,
		UserID:  7,
		ActorID: 3,
		Message: "bob followed you",
	})

	select {
	case <-eavesdropper.Send:
		t.Fatal("foreign subscriber must not receive events")
	case <-time.After(100 * time.Millisecond):
	}
}
