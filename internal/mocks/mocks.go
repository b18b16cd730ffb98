package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"skillswap-service/internal/models"
	"skillswap-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Upsert(ctx context.Context, email, firstName, lastName string, photoURL *string) (models.User, error) {
	args := m.Called(ctx, email, firstName, lastName, photoURL)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID int, firstName, lastName string, photoURL *string, offered, wanted []string) (models.User, error) {
	args := m.Called(ctx, userID, firstName, lastName, photoURL, offered, wanted)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type PeerRepositoryMock struct {
	mock.Mock
}

func (m *PeerRepositoryMock) SendRequest(ctx context.Context, senderID, receiverID int, message *string) (models.PeerRequest, error) {
	args := m.Called(ctx, senderID, receiverID, message)
	var req models.PeerRequest
	if val := args.Get(0); val != nil {
		req = val.(models.PeerRequest)
	}
	return req, args.Error(1)
}

func (m *PeerRepositoryMock) GetRequest(ctx context.Context, requestID int) (models.PeerRequest, error) {
	args := m.Called(ctx, requestID)
	var req models.PeerRequest
	if val := args.Get(0); val != nil {
		req = val.(models.PeerRequest)
	}
	return req, args.Error(1)
}

func (m *PeerRepositoryMock) Respond(ctx context.Context, requestID, actorID int, accept bool) (models.PeerRequest, error) {
	args := m.Called(ctx, requestID, actorID, accept)
	var req models.PeerRequest
	if val := args.Get(0); val != nil {
		req = val.(models.PeerRequest)
	}
	return req, args.Error(1)
}

func (m *PeerRepositoryMock) RemovePeer(ctx context.Context, userA, userB int) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

func (m *PeerRepositoryMock) ArePeers(ctx context.Context, userA, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *PeerRepositoryMock) ListPeers(ctx context.Context, userID int) ([]models.PeerSummary, error) {
	args := m.Called(ctx, userID)
	var peers []models.PeerSummary
	if val := args.Get(0); val != nil {
		peers = val.([]models.PeerSummary)
	}
	return peers, args.Error(1)
}

func (m *PeerRepositoryMock) ListRequests(ctx context.Context, userID int, direction string) ([]models.PeerRequestSummary, error) {
	args := m.Called(ctx, userID, direction)
	var requests []models.PeerRequestSummary
	if val := args.Get(0); val != nil {
		requests = val.([]models.PeerRequestSummary)
	}
	return requests, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateOrGet(ctx context.Context, userID, peerID int) (models.Conversation, error) {
	args := m.Called(ctx, userID, peerID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetByID(ctx context.Context, conversationID int) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ConversationSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationSummary)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, conv models.Conversation, senderID int, msgType models.MessageType, content string, meta *models.FileMeta) (models.Message, error) {
	args := m.Called(ctx, conv, senderID, msgType, content, meta)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListByConversation(ctx context.Context, conversationID int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, conversationID, userID int) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, conversationID, userID int) (int, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Int(0), args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, userID int, ntype models.NotificationType, message string, source *models.User) (models.Notification, error) {
	args := m.Called(ctx, userID, ntype, message, source)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) List(ctx context.Context, userID int) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID, userID int) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.PeerRepository = (*PeerRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
