package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub, userID, characterID uint, name string) *Client {
	return NewClient(hub, nil, userID, characterID, name)
}

// receive 从客户端发送通道中读取下一条消息
func receive(t *testing.T, client *Client) *Message {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("等待消息超时")
		return nil
	}
}

func TestHubRegisterSendsConnected(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub, 1, 10, "剑客")
	hub.Register(client)

	msg := receive(t, client)
	assert.Equal(t, MessageTypeConnected, msg.Type)
}

func TestHubJoinZoneBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	alice := newTestClient(hub, 1, 10, "剑客")
	bob := newTestClient(hub, 2, 20, "法师")
	hub.Register(alice)
	hub.Register(bob)
	receive(t, alice)
	receive(t, bob)

	hub.JoinZone(alice, 5)
	msg := receive(t, alice)
	assert.Equal(t, MessageTypeJoined, msg.Type)
	assert.Equal(t, uint(5), msg.ZoneID)
	assert.Equal(t, "剑客", msg.CharacterName)

	// 加入通知发给区域内所有人
	hub.JoinZone(bob, 5)
	msg = receive(t, alice)
	assert.Equal(t, MessageTypeJoined, msg.Type)
	assert.Equal(t, "法师", msg.CharacterName)
	receive(t, bob)

	assert.ElementsMatch(t, []string{"剑客", "法师"}, hub.OnlineInZone(5))
}

func TestHubChatStaysInZone(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	alice := newTestClient(hub, 1, 10, "剑客")
	bob := newTestClient(hub, 2, 20, "法师")
	carol := newTestClient(hub, 3, 30, "牧师")
	for _, c := range []*Client{alice, bob, carol} {
		hub.Register(c)
		receive(t, c)
	}

	hub.JoinZone(alice, 5)
	receive(t, alice)
	hub.JoinZone(bob, 5)
	receive(t, alice)
	receive(t, bob)
	hub.JoinZone(carol, 7)
	receive(t, carol)

	hub.Broadcast(&Message{
		Type:          MessageTypeChat,
		ZoneID:        5,
		CharacterID:   10,
		CharacterName: "剑客",
		Content:       "组队刷野狼吗",
		Timestamp:     time.Now().Unix(),
	})

	msg := receive(t, alice)
	assert.Equal(t, MessageTypeChat, msg.Type)
	assert.Equal(t, "组队刷野狼吗", msg.Content)
	msg = receive(t, bob)
	assert.Equal(t, "组队刷野狼吗", msg.Content)

	// 其他区域收不到
	select {
	case data := <-carol.Send:
		t.Fatalf("区域7不应收到消息: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubSwitchZone(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	alice := newTestClient(hub, 1, 10, "剑客")
	bob := newTestClient(hub, 2, 20, "法师")
	hub.Register(alice)
	hub.Register(bob)
	receive(t, alice)
	receive(t, bob)

	hub.JoinZone(alice, 5)
	receive(t, alice)
	hub.JoinZone(bob, 5)
	receive(t, alice)
	receive(t, bob)

	// 切换区域时旧区域收到离开通知
	hub.JoinZone(bob, 7)
	msg := receive(t, alice)
	assert.Equal(t, MessageTypeLeft, msg.Type)
	assert.Equal(t, "法师", msg.CharacterName)

	assert.Equal(t, []string{"剑客"}, hub.OnlineInZone(5))
	assert.Equal(t, []string{"法师"}, hub.OnlineInZone(7))
}

func TestHubUnregisterAnnouncesLeft(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	alice := newTestClient(hub, 1, 10, "剑客")
	bob := newTestClient(hub, 2, 20, "法师")
	hub.Register(alice)
	hub.Register(bob)
	receive(t, alice)
	receive(t, bob)

	hub.JoinZone(alice, 5)
	receive(t, alice)
	hub.JoinZone(bob, 5)
	receive(t, alice)
	receive(t, bob)

	hub.Unregister(bob)

	msg := receive(t, alice)
	assert.Equal(t, MessageTypeLeft, msg.Type)
	assert.Equal(t, "法师", msg.CharacterName)
	assert.Equal(t, 1, hub.GetOnlineCount())
}
