package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// APITestClient API测试客户端
type APITestClient struct {
	BaseURL     string
	HTTPClient  *http.Client
	AccessToken string
	CharacterID uint
	MonsterID   uint
}

// NewAPITestClient 创建测试客户端
func NewAPITestClient(baseURL string) *APITestClient {
	return &APITestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MonsterID: 1,
	}
}

func (c *APITestClient) post(path string, payload interface{}) (map[string]interface{}, int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("JSON编码失败: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	return c.do(req)
}

func (c *APITestClient) get(path string) (map[string]interface{}, int, error) {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	return c.do(req)
}

func (c *APITestClient) do(req *http.Request) (map[string]interface{}, int, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("读取响应失败: %v", err)
	}

	result := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("解析响应失败: %v", err)
		}
	}
	return result, resp.StatusCode, nil
}

// TestHealthCheck 测试健康检查
func (c *APITestClient) TestHealthCheck() error {
	fmt.Println("🏥 测试健康检查...")

	resp, status, err := c.get("/health")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("健康检查返回 %d", status)
	}

	fmt.Printf("✅ 服务器健康状态: %v\n", resp["status"])
	fmt.Printf("   在线人数: %v\n", resp["online"])
	fmt.Printf("   进行中战斗: %v\n", resp["active_combats"])
	return nil
}

// TestRegister 测试注册登录
func (c *APITestClient) TestRegister() error {
	fmt.Println("🔐 测试账号注册...")

	username := fmt.Sprintf("tester_%d", time.Now().Unix())
	resp, status, err := c.post("/api/v1/auth/register", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("注册失败 (%d): %v", status, resp["message"])
	}

	token, _ := resp["access_token"].(string)
	if token == "" {
		return fmt.Errorf("注册响应缺少access_token")
	}
	c.AccessToken = token

	fmt.Printf("✅ 注册成功: %s\n", username)
	return nil
}

// TestCreateCharacter 测试创建角色
func (c *APITestClient) TestCreateCharacter() error {
	fmt.Println("🧙 测试创建角色...")

	resp, status, err := c.post("/api/v1/characters", map[string]interface{}{
		"name":  fmt.Sprintf("勇者%d", time.Now().Unix()%10000),
		"race":  "human",
		"class": "warrior",
	})
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("创建角色失败 (%d): %v", status, resp["message"])
	}

	id, _ := resp["id"].(float64)
	c.CharacterID = uint(id)

	fmt.Printf("✅ 角色创建成功: %v (ID=%d)\n", resp["name"], c.CharacterID)
	return nil
}

// TestCombat 测试一场完整战斗
func (c *APITestClient) TestCombat() error {
	fmt.Println("⚔️  测试战斗流程...")

	base := fmt.Sprintf("/api/v1/characters/%d/combat", c.CharacterID)

	resp, status, err := c.post(base, map[string]interface{}{
		"monster_id": c.MonsterID,
	})
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("开始战斗失败 (%d): %v", status, resp["message"])
	}

	monster, _ := resp["monster"].(map[string]interface{})
	if monster != nil {
		fmt.Printf("   遭遇怪物: %v (HP %v)\n", monster["name"], monster["max_health"])
	}

	// 连续普攻直到战斗结束
	for turn := 1; turn <= 30; turn++ {
		resp, status, err = c.post(base+"/action", map[string]interface{}{
			"action": "attack",
		})
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("战斗行动失败 (%d): %v", status, resp["message"])
		}

		combat, _ := resp["combat"].(map[string]interface{})
		if combat == nil {
			return fmt.Errorf("战斗响应缺少combat字段")
		}

		combatStatus, _ := combat["status"].(string)
		fmt.Printf("   回合 %v: 状态=%s\n", combat["turn"], combatStatus)

		if combatStatus != "active" {
			if victory, ok := resp["victory"].(map[string]interface{}); ok {
				fmt.Printf("✅ 战斗胜利! 经验+%v 金币+%v\n", victory["experience_gained"], victory["gold_gained"])
			} else {
				fmt.Printf("✅ 战斗结束: %s\n", combatStatus)
			}
			return nil
		}
	}

	return fmt.Errorf("战斗超过30回合未结束")
}

// TestHistory 测试战斗记录
func (c *APITestClient) TestHistory() error {
	fmt.Println("📜 测试战斗记录...")

	resp, status, err := c.get(fmt.Sprintf("/api/v1/characters/%d/combat/history", c.CharacterID))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("查询记录失败 (%d): %v", status, resp["message"])
	}

	if pagination, ok := resp["pagination"].(map[string]interface{}); ok {
		fmt.Printf("✅ 共 %v 条战斗记录\n", pagination["total"])
	}
	return nil
}

// TestChatWebSocket 测试聊天WebSocket
func (c *APITestClient) TestChatWebSocket() error {
	fmt.Println("💬 测试聊天WebSocket...")

	wsURL := strings.Replace(c.BaseURL, "http", "ws", 1)
	url := fmt.Sprintf("%s/ws/chat/%d?token=%s", wsURL, c.CharacterID, c.AccessToken)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("WebSocket连接失败: %v", err)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg map[string]interface{}
			if err := conn.ReadJSON(&msg); err != nil {
				log.Println("WebSocket读取失败:", err)
				return
			}

			switch msg["type"] {
			case "connected":
				fmt.Println("📨 连接确认")
			case "joined":
				fmt.Printf("📨 %v 加入了区域 %v\n", msg["character_name"], msg["zone_id"])
			case "chat":
				fmt.Printf("📨 [%v] %v: %v\n", msg["zone_id"], msg["character_name"], msg["content"])
			case "pong":
				fmt.Println("📨 心跳响应")
			default:
				fmt.Printf("📨 收到消息 [%v]\n", msg["type"])
			}
		}
	}()

	// 加入主城频道并发言
	if err := conn.WriteJSON(map[string]interface{}{"type": "join", "zone_id": 1}); err != nil {
		return fmt.Errorf("加入区域失败: %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	if err := conn.WriteJSON(map[string]interface{}{"type": "chat", "content": "大家好!"}); err != nil {
		return fmt.Errorf("发送消息失败: %v", err)
	}

	fmt.Println("💓 发送心跳测试")
	if err := conn.WriteJSON(map[string]interface{}{"type": "ping"}); err != nil {
		log.Printf("心跳发送失败: %v", err)
	}

	select {
	case <-done:
		fmt.Println("WebSocket连接关闭")
	case <-interrupt:
		fmt.Println("收到中断信号")
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("WebSocket关闭错误:", err)
			return err
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-time.After(3 * time.Second):
	}

	fmt.Println("✅ WebSocket测试完成")
	return nil
}

// RunAllTests 运行所有测试
func (c *APITestClient) RunAllTests() {
	fmt.Println("🚀 开始API全面测试...")
	fmt.Printf("🎯 目标服务器: %s\n", c.BaseURL)
	fmt.Println(strings.Repeat("=", 60))

	tests := []struct {
		name string
		fn   func() error
	}{
		{"健康检查", c.TestHealthCheck},
		{"账号注册", c.TestRegister},
		{"创建角色", c.TestCreateCharacter},
		{"战斗流程", c.TestCombat},
		{"战斗记录", c.TestHistory},
	}

	successCount := 0
	for _, test := range tests {
		if err := test.fn(); err != nil {
			fmt.Printf("❌ %s失败: %v\n", test.name, err)
		} else {
			fmt.Printf("✅ %s成功\n", test.name)
			successCount++
		}
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("📊 测试结果: %d/%d 通过\n", successCount, len(tests))

	if successCount == len(tests) {
		fmt.Println("🎉 所有API测试通过!")
		fmt.Println("\n🌐 是否要测试聊天WebSocket? (按Ctrl+C退出)")
		if err := c.TestChatWebSocket(); err != nil {
			fmt.Printf("❌ WebSocket测试失败: %v\n", err)
		}
	} else {
		fmt.Printf("⚠️  有 %d 个测试失败，请检查服务器状态\n", len(tests)-successCount)
	}
}

func main() {
	fmt.Println("⚔️  RPG游戏服务器 API 测试客户端")
	fmt.Println("================================")

	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	client := NewAPITestClient(baseURL)
	client.RunAllTests()
}
