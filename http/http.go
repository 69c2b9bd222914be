// Package http implements the chatstream transport and chat service on top
// of net/http.
package http

const (
	defaultBaseURL = "http://localhost:8080"
	streamPath     = "/chat/message"
	createChatPath = "/chat/create"
	listChatsPath  = "/chat/getall"

	// maxErrorBody bounds how much of a failed response is kept for the
	// error message.
	maxErrorBody = 4 << 10
)
