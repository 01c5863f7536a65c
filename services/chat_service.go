package services

import (
	"connectrix/contract"
	"connectrix/domain"
	"connectrix/repositories"
)

var _ contract.IChatReader = (*ChatService)(nil)

// ChatService is the query side of the chat store, consumed by the HTTP
// surface. The relay owns all writes.
type ChatService struct {
	chats repositories.IChatRepository
}

func NewChatService(chats repositories.IChatRepository) *ChatService {
	return &ChatService{chats: chats}
}

func (s *ChatService) Conversations(userID string) ([]domain.Conversation, error) {
	return s.chats.ListConversations(userID)
}

func (s *ChatService) Messages(conversationID string, limit int) ([]domain.Message, error) {
	return s.chats.GetMessages(conversationID, limit)
}

func (s *ChatService) Conversation(conversationID string) (domain.Conversation, error) {
	return s.chats.GetConversation(conversationID)
}
