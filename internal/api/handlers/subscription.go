package handlers

import (
	"net/http"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

type SubscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}

func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	channelID, err := pathID(r, "channelId")
	if err != nil {
		writeError(w, "SubscriptionHandler.Toggle", err)
		return
	}

	subscribed, err := h.subscriptionService.Toggle(r.Context(), userID, channelID)
	if err != nil {
		writeError(w, "SubscriptionHandler.Toggle", err)
		return
	}
	writeJSON(w, http.StatusOK, SubscriptionResponse{Subscribed: subscribed})
}

func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		writeError(w, "SubscriptionHandler.Subscribers", err)
		return
	}

	list, err := h.subscriptionService.Subscribers(r.Context(), channelID)
	if err != nil {
		writeError(w, "SubscriptionHandler.Subscribers", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, "SubscriptionHandler.SubscribedChannels", err)
		return
	}

	list, err := h.subscriptionService.SubscribedChannels(r.Context(), subscriberID)
	if err != nil {
		writeError(w, "SubscriptionHandler.SubscribedChannels", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
