// internal/server/chat.go
package server

import "net/http"

type chatMessageRequest struct {
	Message        string `json:"message" validate:"required,min=1,max=4000"`
	ConversationID string `json:"conversationId" validate:"omitempty,uuid4"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req chatMessageRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	turn, err := s.chat.SendMessage(r.Context(), claims.Subject, req.ConversationID, req.Message)
	if err != nil {
		s.respondError(w, err, "chat.sendMessage")
		return
	}

	respondData(w, http.StatusOK, turn)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	conversations, err := s.chat.ListConversations(r.Context(), claims.Subject)
	if err != nil {
		s.respondError(w, err, "chat.listConversations")
		return
	}

	respondData(w, http.StatusOK, conversations)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	conversation, err := s.chat.GetConversation(r.Context(), claims.Subject, r.PathValue("id"))
	if err != nil {
		s.respondError(w, err, "chat.getConversation")
		return
	}

	respondData(w, http.StatusOK, conversation)
}
