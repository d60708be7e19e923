package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/helloneige/neige/internal/bus"
	"github.com/helloneige/neige/internal/snow"
)

// NotificationHandler serves the stored notification feed and streams
// live snow-state changes over SSE.
type NotificationHandler struct {
	store NotificationReader
	bus   *bus.Bus
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(store NotificationReader, b *bus.Bus) *NotificationHandler {
	return &NotificationHandler{store: store, bus: b}
}

type NotificationsInput struct {
	UserInput
	Limit int `query:"limit" doc:"Maximum events returned, newest first" example:"50"`
}

type NotificationsOutput struct {
	Body struct {
		Notifications []snow.NotificationEvent `json:"notifications"`
	}
}

// RegisterRoutes registers notification routes.
func (h *NotificationHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/notifications", h.List, huma.OperationTags("notifications"))
	huma.Get(api, "/api/v1/notifications/stream", h.Stream, huma.OperationTags("notifications"))
}

func (h *NotificationHandler) List(ctx context.Context, input *NotificationsInput) (*NotificationsOutput, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}
	events, err := h.store.ListForUser(ctx, userID, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list notifications", err)
	}
	if events == nil {
		events = []snow.NotificationEvent{}
	}
	out := &NotificationsOutput{}
	out.Body.Notifications = events
	return out, nil
}

// Stream pushes the user's live state-change events as Datastar custom
// events. The subscription is torn down when the client disconnects so
// a stale user scope never keeps receiving.
func (h *NotificationHandler) Stream(ctx context.Context, input *struct{ UserInput }) (*huma.StreamResponse, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}

	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			r, w := humago.Unwrap(humaCtx)
			sse := datastar.NewSSE(w, r)

			sub := h.bus.Subscribe(userID)
			defer sub.Close()

			for {
				select {
				case <-ctx.Done():
					return
				case evt, ok := <-sub.C:
					if !ok {
						return
					}
					sse.DispatchCustomEvent("snow-state-changed", map[string]any{
						"id":        evt.ID,
						"coteRueId": evt.CoteRueID,
						"oldEtat":   evt.OldEtat,
						"newEtat":   evt.NewEtat,
						"status":    snow.LabelFor(evt.NewEtat),
						"color":     snow.ColorFor(evt.NewEtat),
						"createdAt": evt.CreatedAt,
					})
				}
			}
		},
	}, nil
}
