package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// SendCard 向群聊发送消息卡片
func (c *FeishuClient) SendCard(ctx context.Context, chatID string, card InteractiveCard) error {
	return c.sendCard(ctx, "chat_id", chatID, card)
}

func (c *FeishuClient) sendCard(ctx context.Context, idType, id string, card InteractiveCard) error {
	cardBytes, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("序列化卡片内容失败: %w", err)
	}

	reqBody := SendMessageRequest{
		ReceiveIDType: idType,
		ReceiveID:     id,
		MsgType:       "interactive",
		Content:       string(cardBytes),
	}

	path := fmt.Sprintf("/open-apis/im/v1/messages?receive_id_type=%s", idType)

	var resp SendMessageResponse
	if err := c.doRequest(ctx, "POST", path, reqBody, &resp); err != nil {
		return fmt.Errorf("发送消息卡片失败: %w", err)
	}

	return nil
}

// BatchFailure 卡片中展示的失败记录
type BatchFailure struct {
	Index int
	Key   string
	Error string
}

// 卡片最多列出的失败记录数
const maxFailureLines = 10

// NewReconcileFailureCard 创建订单对账失败告警卡片
// kindLabel: 订单类型名称（采购单/下料单）
// operator: 提交人
// total/failed: 批次记录数与失败数
func NewReconcileFailureCard(kindLabel, operator, batchID string, total, failed int, failures []BatchFailure) InteractiveCard {
	if operator == "" {
		operator = "系统"
	}

	var lines []string
	for i, f := range failures {
		if i >= maxFailureLines {
			lines = append(lines, fmt.Sprintf("…其余 %d 条略", len(failures)-maxFailureLines))
			break
		}
		key := f.Key
		if key == "" {
			key = "无身份键"
		}
		lines = append(lines, fmt.Sprintf("%d. 第 %d 条（%s）：%s", i+1, f.Index+1, key, f.Error))
	}

	return InteractiveCard{
		Config: &CardConfig{WideScreenMode: true},
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: fmt.Sprintf("⚠️ %s批量入库存在失败记录", kindLabel)},
			Template: "red",
		},
		Elements: []CardElement{
			{
				Tag: "div",
				Fields: []CardField{
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**提交人**\n%s", operator)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**失败/总数**\n%d / %d", failed, total)}},
				},
			},
			{
				Tag:  "div",
				Text: &CardText{Tag: "lark_md", Content: "**失败明细**\n" + strings.Join(lines, "\n")},
			},
			{Tag: "hr"},
			{
				Tag: "note",
				Elements: []CardElement{
					{Tag: "plain_text", Content: "批次号 " + batchID + "，请核对后重新提交失败记录"},
				},
			},
		},
	}
}
