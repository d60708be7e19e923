package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/helloneige/neige/internal/store"
)

type FavoritesOutput struct {
	Body struct {
		Favorites []int64 `json:"favorites" doc:"Favorited street side IDs"`
	}
}

type AddFavoriteInput struct {
	UserInput
	Body struct {
		CoteRueID int64 `json:"coteRueId" required:"true" doc:"Street side to favorite"`
	}
}

type RemoveFavoriteInput struct {
	UserInput
	CoteRueID int64 `path:"coteRueId" doc:"Street side to unfavorite"`
}

// RegisterFavorites registers favorite CRUD routes.
func (h *APIHandler) RegisterFavorites(api huma.API) {
	huma.Get(api, "/api/v1/favorites", h.GetFavorites, huma.OperationTags("favorites"))
	huma.Post(api, "/api/v1/favorites", h.AddFavorite, huma.OperationTags("favorites"))
	huma.Delete(api, "/api/v1/favorites/{coteRueId}", h.RemoveFavorite, huma.OperationTags("favorites"))
}

func (h *APIHandler) GetFavorites(ctx context.Context, input *struct{ UserInput }) (*FavoritesOutput, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}
	ids, err := h.svc.Favorites.List(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list favorites", err)
	}
	out := &FavoritesOutput{}
	if ids == nil {
		ids = []int64{}
	}
	out.Body.Favorites = ids
	return out, nil
}

// AddFavorite records a favorite. Re-favoriting an existing pair is an
// idempotent success.
func (h *APIHandler) AddFavorite(ctx context.Context, input *AddFavoriteInput) (*struct{ Body MessageBody }, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Favorites.Add(ctx, userID, input.Body.CoteRueID); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return nil, huma.Error500InternalServerError("failed to add favorite", err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Favorite added"}}, nil
}

func (h *APIHandler) RemoveFavorite(ctx context.Context, input *RemoveFavoriteInput) (*struct{ Body MessageBody }, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Favorites.Remove(ctx, userID, input.CoteRueID); err != nil {
		return nil, huma.Error500InternalServerError("failed to remove favorite", err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Favorite removed"}}, nil
}
