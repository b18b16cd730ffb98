package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skillswap-service/internal/mocks"
	"skillswap-service/internal/models"
	"skillswap-service/internal/repositories"
	"skillswap-service/internal/telemetry"
	"skillswap-service/internal/ws"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/conversations", handler.ListConversations)
	r.POST("/conversations/start", handler.StartConversation)
	r.GET("/conversations/:conversation_id/messages", handler.GetMessages)
	r.POST("/conversations/:conversation_id/messages", handler.PostMessage)
	r.POST("/conversations/:conversation_id/read", handler.MarkRead)
	return r
}

func TestStartConversationSuccess(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	peerRepo := new(mocks.PeerRepositoryMock)
	handler := NewChatHandler(conversationRepo, nil, peerRepo, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	peerRepo.On("ArePeers", mock.Anything, 1, 2).Return(true, nil).Once()
	conversationRepo.On("CreateOrGet", mock.Anything, 1, 2).
		Return(models.Conversation{ID: 10, User1ID: 1, User2ID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/start", bytes.NewBufferString(`{"peer_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	peerRepo.AssertExpectations(t)
	conversationRepo.AssertExpectations(t)
}

func TestStartConversationNotPeers(t *testing.T) {
	peerRepo := new(mocks.PeerRepositoryMock)
	handler := NewChatHandler(new(mocks.ConversationRepositoryMock), nil, peerRepo, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	peerRepo.On("ArePeers", mock.Anything, 1, 5).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/start", bytes.NewBufferString(`{"peer_id":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	peerRepo.AssertExpectations(t)
}

func TestGetMessagesOrdered(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(conversationRepo, messageRepo, nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		{ID: 1, ConversationID: 5, SenderID: 1, Content: "hi", CreatedAt: base},
		{ID: 2, ConversationID: 5, SenderID: 2, Content: "hey", CreatedAt: base.Add(time.Second)},
	}
	conversationRepo.On("GetByID", mock.Anything, 5).
		Return(models.Conversation{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	messageRepo.On("ListByConversation", mock.Anything, 5).Return(msgs, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	assert.True(t, !resp.Messages[1].CreatedAt.Before(resp.Messages[0].CreatedAt))
	conversationRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestGetMessagesNotParticipant(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	handler := NewChatHandler(conversationRepo, new(mocks.MessageRepositoryMock), nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	conversationRepo.On("GetByID", mock.Anything, 5).
		Return(models.Conversation{ID: 5, User1ID: 2, User2ID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	conversationRepo.AssertExpectations(t)
}

func TestGetMessagesInvalidID(t *testing.T) {
	handler := NewChatHandler(new(mocks.ConversationRepositoryMock), new(mocks.MessageRepositoryMock), nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostMessageText(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(conversationRepo, messageRepo, nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	conv := models.Conversation{ID: 5, User1ID: 1, User2ID: 2}
	conversationRepo.On("GetByID", mock.Anything, 5).Return(conv, nil).Once()
	messageRepo.On("Create", mock.Anything, conv, 1, models.MessageText, "hi there", (*models.FileMeta)(nil)).
		Return(models.Message{ID: 7, ConversationID: 5, SenderID: 1, ReceiverID: 2, Content: "hi there"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages", bytes.NewBufferString(`{"content":"hi there"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	conversationRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostMessagePublishesEvent(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewEventEmitter(publisher, "skillswap-service", "test")
	handler := NewChatHandler(conversationRepo, messageRepo, nil, nil, ws.NewHub(), emitter)
	router := setupChatRouter(handler)

	conv := models.Conversation{ID: 5, User1ID: 1, User2ID: 2}
	conversationRepo.On("GetByID", mock.Anything, 5).Return(conv, nil).Once()
	messageRepo.On("Create", mock.Anything, conv, 1, models.MessageText, "hi", (*models.FileMeta)(nil)).
		Return(models.Message{ID: 7, ConversationID: 5, SenderID: 1, ReceiverID: 2, Content: "hi"}, nil).Once()
	publisher.On("Publish", mock.Anything, "chats.message_sent", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.EventEnvelope)
		return ok && envelope.EventName == "message_sent"
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	publisher.AssertExpectations(t)
}

func TestPostMessageVoiceRequiresMeta(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	handler := NewChatHandler(conversationRepo, new(mocks.MessageRepositoryMock), nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	conversationRepo.On("GetByID", mock.Anything, 5).
		Return(models.Conversation{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()

	body := bytes.NewBufferString(`{"content":"voice note","type":"voice"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostMessageUnknownType(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	handler := NewChatHandler(conversationRepo, new(mocks.MessageRepositoryMock), nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	conversationRepo.On("GetByID", mock.Anything, 5).
		Return(models.Conversation{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()

	body := bytes.NewBufferString(`{"content":"x","type":"sticker"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkReadSuccess(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewChatHandler(conversationRepo, messageRepo, nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	conversationRepo.On("GetByID", mock.Anything, 5).
		Return(models.Conversation{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	messageRepo.On("MarkConversationRead", mock.Anything, 5, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	conversationRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestMarkReadConversationMissing(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	handler := NewChatHandler(conversationRepo, new(mocks.MessageRepositoryMock), nil, nil, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	conversationRepo.On("GetByID", mock.Anything, 5).
		Return(models.Conversation{}, repositories.ErrConversationNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/5/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	conversationRepo.AssertExpectations(t)
}

func TestListConversationsSuccess(t *testing.T) {
	conversationRepo := new(mocks.ConversationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(conversationRepo, nil, nil, userRepo, ws.NewHub(), nil)
	router := setupChatRouter(handler)

	conversationRepo.On("ListForUser", mock.Anything, 1).
		Return([]models.ConversationSummary{{ConversationID: 3, PeerID: 2, Unread: 4}}, nil).Once()
	userRepo.On("BulkByIDs", mock.Anything, []int{2}).
		Return([]models.User{{ID: 2, FirstName: "Bob", LastName: "Harris"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Conversations []struct {
			ConversationID int    `json:"conversation_id"`
			PeerName       string `json:"peer_name"`
			Unread         int    `json:"unread"`
		} `json:"conversations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, "Bob Harris", resp.Conversations[0].PeerName)
	assert.Equal(t, 4, resp.Conversations[0].Unread)
	conversationRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}
