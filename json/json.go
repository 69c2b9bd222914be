// Package json converts between chatstream domain types and the chat
// server's JSON wire format.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fwojciec/chatstream"
)

// streamRequest is the body of the streaming endpoint request.
type streamRequest struct {
	ChatID string `json:"chat_id"`
	Prompt string `json:"prompt"`
}

// createChatResponse is returned by the chat creation endpoint.
type createChatResponse struct {
	ChatID string `json:"chatId"`
}

// chatListResponse is returned by the chat listing endpoint.
type chatListResponse struct {
	Chats []chatDTO `json:"chats"`
}

type chatDTO struct {
	ID        string       `json:"_id"`
	Title     string       `json:"title"`
	Messages  []messageDTO `json:"messages"`
	UpdatedAt timestamp    `json:"updatedAt"`
}

type messageDTO struct {
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt timestamp `json:"createdAt"`
}

// errorResponse covers the error bodies the server is known to send.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// timestamp decodes an RFC 3339 string, leaving the zero time for null,
// empty or unparsable values.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	t.Time = parsed
	return nil
}

// MarshalStreamRequest encodes the streaming request body
// {"chat_id": ..., "prompt": ...}. HTML characters are not escaped.
// U+2028 and U+2029 are still written as \u2028 and \u2029.
func MarshalStreamRequest(chatID, prompt string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(streamRequest{ChatID: chatID, Prompt: prompt}); err != nil {
		return nil, fmt.Errorf("marshal stream request: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalCreateChat decodes the chat creation response into a new, empty
// conversation stamped with now.
func UnmarshalCreateChat(data []byte, now time.Time) (chatstream.Conversation, error) {
	var resp createChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return chatstream.Conversation{}, fmt.Errorf("unmarshal create chat: %w", err)
	}
	if resp.ChatID == "" {
		return chatstream.Conversation{}, fmt.Errorf("create chat response has no chatId")
	}
	return chatstream.Conversation{
		ID:        resp.ChatID,
		Title:     chatstream.DefaultTitle,
		UpdatedAt: now,
	}, nil
}

// UnmarshalChats decodes the chat listing response. Chats keep the server's
// order. Message IDs are derived from the chat ID and position because the
// server does not send any.
func UnmarshalChats(data []byte) ([]chatstream.Conversation, error) {
	var resp chatListResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal chats: %w", err)
	}
	convs := make([]chatstream.Conversation, 0, len(resp.Chats))
	for i, dto := range resp.Chats {
		if dto.ID == "" {
			return nil, fmt.Errorf("chat %d: missing _id", i)
		}
		convs = append(convs, unmarshalChat(dto))
	}
	return convs, nil
}

func unmarshalChat(dto chatDTO) chatstream.Conversation {
	title := dto.Title
	if title == "" {
		title = chatstream.DefaultTitle
	}
	msgs := make([]chatstream.Message, len(dto.Messages))
	for i, m := range dto.Messages {
		msgs[i] = chatstream.Message{
			ID:        dto.ID + "-" + strconv.Itoa(i),
			Content:   m.Content,
			IsUser:    m.Role == "user",
			Timestamp: m.CreatedAt.Time,
		}
	}
	return chatstream.Conversation{
		ID:        dto.ID,
		Title:     title,
		Messages:  msgs,
		UpdatedAt: dto.UpdatedAt.Time,
	}
}

// ErrorMessage extracts a human-readable message from an error body. It
// falls back to the raw body.
func ErrorMessage(data []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(data, &resp); err == nil {
		switch {
		case resp.Error != "":
			return resp.Error
		case resp.Message != "":
			return resp.Message
		}
	}
	return string(bytes.TrimSpace(data))
}
