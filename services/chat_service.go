//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/repositories"
	"chat-relay/runtime"
)

type IChatService interface {
	Connected(conn contract.Connection)
	Online(ctx context.Context, participantID string, conn contract.Connection)
	Disconnect(ctx context.Context, conn contract.Connection)
	JoinChannel(conn contract.Connection, a, b string)
	Send(ctx context.Context, draft domain.DraftMessage) (domain.Message, error)
	Typing(ctx context.Context, signal domain.TypingSignal)
	History(a, b string, cursor *string) ([]domain.Message, *string, error)
	Search(ctx context.Context, a, b, query string) ([]repositories.SearchHit, error)
}

// ChatService is the facade the transport layer talks to. The realtime path
// goes through the engine; history and search are read paths served straight
// from the repositories.
type ChatService struct {
	engine   *runtime.Engine
	messages repositories.IMessageRepository
	search   repositories.ISearchRepository
}

func NewChatService(engine *runtime.Engine, messages repositories.IMessageRepository,
	search repositories.ISearchRepository) *ChatService {
	return &ChatService{engine: engine, messages: messages, search: search}
}

func (s *ChatService) Connected(conn contract.Connection) {
	s.engine.Lifecycle().Connected(conn)
}

func (s *ChatService) Online(ctx context.Context, participantID string, conn contract.Connection) {
	s.engine.Lifecycle().Online(ctx, participantID, conn)
}

func (s *ChatService) Disconnect(ctx context.Context, conn contract.Connection) {
	s.engine.Lifecycle().Disconnect(ctx, conn)
}

// JoinChannel derives the canonical channel for the pair and adds the
// connection to its membership group.
func (s *ChatService) JoinChannel(conn contract.Connection, a, b string) {
	s.engine.Registry().Join(conn, domain.NewChannelID(a, b))
}

func (s *ChatService) Send(ctx context.Context, draft domain.DraftMessage) (domain.Message, error) {
	return s.engine.Dispatcher().Send(ctx, draft)
}

func (s *ChatService) Typing(ctx context.Context, signal domain.TypingSignal) {
	s.engine.Typing().Relay(ctx, signal)
}

func (s *ChatService) History(a, b string, cursor *string) ([]domain.Message, *string, error) {
	return s.messages.QueryBetween(a, b, cursor)
}

func (s *ChatService) Search(ctx context.Context, a, b, query string) ([]repositories.SearchHit, error) {
	return s.search.SearchMessages(ctx, a, b, query)
}
