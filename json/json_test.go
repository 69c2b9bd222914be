package json_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fwojciec/chatstream"
	chatjson "github.com/fwojciec/chatstream/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalStreamRequest(t *testing.T) {
	t.Parallel()

	t.Run("exact body", func(t *testing.T) {
		t.Parallel()
		data, err := chatjson.MarshalStreamRequest("c1", "hello")
		require.NoError(t, err)
		assert.Equal(t, `{"chat_id":"c1","prompt":"hello"}`, string(data))
	})

	t.Run("html and unicode pass through", func(t *testing.T) {
		t.Parallel()
		data, err := chatjson.MarshalStreamRequest("c1", "<b>&</b> ünï \"q\"\n")
		require.NoError(t, err)
		assert.Equal(t, `{"chat_id":"c1","prompt":"<b>&</b> ünï \"q\"\n"}`, string(data))

		var decoded map[string]string
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "<b>&</b> ünï \"q\"\n", decoded["prompt"])
	})

	t.Run("line and paragraph separators are escaped", func(t *testing.T) {
		t.Parallel()
		data, err := chatjson.MarshalStreamRequest("c1", "a\u2028b\u2029c")
		require.NoError(t, err)
		assert.Equal(t, `{"chat_id":"c1","prompt":"a\u2028b\u2029c"}`, string(data))
	})
}

func TestUnmarshalCreateChat(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		conv, err := chatjson.UnmarshalCreateChat([]byte(`{"chatId":"abc"}`), now)
		require.NoError(t, err)
		assert.Equal(t, chatstream.Conversation{ID: "abc", Title: "Chat", UpdatedAt: now}, conv)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalCreateChat([]byte(`{}`), now)
		assert.ErrorContains(t, err, "no chatId")
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalCreateChat([]byte(`{`), now)
		assert.Error(t, err)
	})
}

func TestUnmarshalChats(t *testing.T) {
	t.Parallel()

	t.Run("full listing", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"chats":[
			{"_id":"c1","title":"Trip","updatedAt":"2026-03-01T10:00:00.000Z","messages":[
				{"content":"hi","role":"user","createdAt":"2026-03-01T09:59:00.000Z"},
				{"content":"hello!","role":"assistant","createdAt":"2026-03-01T09:59:01.500Z"}
			]},
			{"_id":"c2","title":"","messages":null,"updatedAt":null}
		]}`)
		convs, err := chatjson.UnmarshalChats(data)
		require.NoError(t, err)
		require.Len(t, convs, 2)

		assert.Equal(t, "c1", convs[0].ID)
		assert.Equal(t, "Trip", convs[0].Title)
		assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), convs[0].UpdatedAt)
		require.Len(t, convs[0].Messages, 2)
		assert.Equal(t, chatstream.Message{
			ID:        "c1-0",
			Content:   "hi",
			IsUser:    true,
			Timestamp: time.Date(2026, 3, 1, 9, 59, 0, 0, time.UTC),
		}, convs[0].Messages[0])
		assert.False(t, convs[0].Messages[1].IsUser)
		assert.Equal(t, "c1-1", convs[0].Messages[1].ID)

		assert.Equal(t, "Chat", convs[1].Title)
		assert.Empty(t, convs[1].Messages)
		assert.True(t, convs[1].UpdatedAt.IsZero())
	})

	t.Run("bad timestamp is tolerated", func(t *testing.T) {
		t.Parallel()
		convs, err := chatjson.UnmarshalChats([]byte(`{"chats":[{"_id":"c1","updatedAt":"yesterday"}]}`))
		require.NoError(t, err)
		assert.True(t, convs[0].UpdatedAt.IsZero())
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalChats([]byte(`{"chats":[{"title":"x"}]}`))
		assert.ErrorContains(t, err, "missing _id")
	})

	t.Run("empty listing", func(t *testing.T) {
		t.Parallel()
		convs, err := chatjson.UnmarshalChats([]byte(`{"chats":[]}`))
		require.NoError(t, err)
		assert.Empty(t, convs)
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "unauthorized", chatjson.ErrorMessage([]byte(`{"error":"unauthorized"}`)))
	assert.Equal(t, "chat not found", chatjson.ErrorMessage([]byte(`{"message":"chat not found"}`)))
	assert.Equal(t, "Bad Gateway", chatjson.ErrorMessage([]byte("Bad Gateway\n")))
}
