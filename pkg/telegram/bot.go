package telegram

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Bot struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewBot(token string) *Bot {
	return &Bot{
		token:   token,
		baseURL: "https://api.telegram.org/bot" + token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *Bot) SendMessage(chatID, text string) error {
	endpoint := b.baseURL + "/sendMessage"

	params := url.Values{}
	params.Add("chat_id", chatID)
	params.Add("text", text)

	resp, err := b.client.PostForm(endpoint, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: %s", resp.Status)
	}

	return nil
}

// NotifyNewComment formats a short digest of a freshly created comment.
func (b *Bot) NotifyNewComment(chatID string, postID, commentID int64, content string) error {
	if len(content) > 120 {
		content = content[:117] + "..."
	}
	text := fmt.Sprintf("New comment #%d on post #%d:\n%s", commentID, postID, content)
	return b.SendMessage(chatID, text)
}
