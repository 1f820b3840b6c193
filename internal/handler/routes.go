package handler

import (
	"net/http"

	"github.com/msomdec/taskchat/internal/service"
	"github.com/msomdec/taskchat/internal/web/static"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Credential
// endpoints are rate limited; everything under /tasks and /chat requires a
// verified token.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, tasks *service.TaskService, chat *service.ChatService, limiter *service.RateLimiter) {
	authHandler := NewAuthHandler(auth)
	taskHandler := NewTaskHandler(tasks)
	chatHandler := NewChatHandler(chat)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(limiter, h)
	}

	mux.HandleFunc("GET /health", HandleHealth)

	mux.Handle("POST /auth/register", limited(authHandler.HandleRegister))
	mux.Handle("POST /auth/login", limited(authHandler.HandleLogin))
	mux.Handle("GET /auth/me", protected(authHandler.HandleMe))

	mux.Handle("POST /tasks", protected(taskHandler.HandleCreate))
	mux.Handle("GET /tasks", protected(taskHandler.HandleList))
	mux.Handle("GET /tasks/{id}", protected(taskHandler.HandleGet))
	mux.Handle("PUT /tasks/{id}", protected(taskHandler.HandleUpdate))
	mux.Handle("DELETE /tasks/{id}", protected(taskHandler.HandleDelete))

	mux.Handle("POST /chat", protected(chatHandler.HandleChat))
	mux.Handle("GET /chat/conversations", protected(chatHandler.HandleConversations))
	mux.Handle("GET /chat/conversations/{id}", protected(chatHandler.HandleConversation))

	mux.HandleFunc("GET /{$}", HandleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))))
}
