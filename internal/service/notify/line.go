package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	drepo "Sentinel/internal/domain/repository"
	apphttp "Sentinel/pkg/http"
)

const (
	lineMaxTextRunes = 5000
	lineMaxMessages  = 5
)

var ErrNoDestination = errors.New("no push destination configured")

// LineNotifier sends text through the messaging API push and reply endpoints.
type LineNotifier struct {
	client    *apphttp.Client
	baseURL   string
	token     string
	defaultTo string
}

func NewLineNotifier(client *apphttp.Client, baseURL, token, defaultTo string) *LineNotifier {
	return &LineNotifier{client: client, baseURL: strings.TrimRight(baseURL, "/"), token: token, defaultTo: defaultTo}
}

var _ drepo.Notifier = (*LineNotifier)(nil)

func (n *LineNotifier) Name() string { return "line" }

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type linePush struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineReply struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []lineMessage `json:"messages"`
}

// Push sends to to, or the default destination when to is empty.
func (n *LineNotifier) Push(ctx context.Context, to, text string) error {
	if to == "" {
		to = n.defaultTo
	}
	if to == "" {
		return ErrNoDestination
	}
	return n.post(ctx, "/v2/bot/message/push", linePush{To: to, Messages: textMessages(text)})
}

// Reply answers an inbound event by its reply token.
func (n *LineNotifier) Reply(ctx context.Context, replyToken, text string) error {
	return n.post(ctx, "/v2/bot/message/reply", lineReply{ReplyToken: replyToken, Messages: textMessages(text)})
}

func (n *LineNotifier) post(ctx context.Context, path string, body any) error {
	err := n.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:  apphttp.MethodPost,
		URL:     n.baseURL + path,
		Headers: map[string]string{"Authorization": "Bearer " + n.token},
		Body:    body,
	}, nil)
	if err != nil {
		return fmt.Errorf("line %s: %w", path, err)
	}
	return nil
}

// textMessages splits text into at most lineMaxMessages chunks on rune boundaries.
func textMessages(text string) []lineMessage {
	runes := []rune(text)
	var out []lineMessage
	for len(runes) > 0 && len(out) < lineMaxMessages {
		n := min(len(runes), lineMaxTextRunes)
		out = append(out, lineMessage{Type: "text", Text: string(runes[:n])})
		runes = runes[n:]
	}
	if len(out) == 0 {
		out = append(out, lineMessage{Type: "text", Text: " "})
	}
	return out
}
