package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/helloneige/neige/internal/snow"
)

type ParkingListOutput struct {
	Body struct {
		Parking []snow.ParkingLocation `json:"parking" doc:"Saved spots, newest first"`
	}
}

type CreateParkingInput struct {
	UserInput
	Body struct {
		Latitude  float64 `json:"latitude" required:"true" doc:"Spot latitude"`
		Longitude float64 `json:"longitude" required:"true" doc:"Spot longitude"`
		Name      string  `json:"name,omitempty" doc:"Optional label"`
		Notes     string  `json:"notes,omitempty" doc:"Optional notes"`
	}
}

type DeleteParkingInput struct {
	UserInput
	ID string `path:"id" doc:"Parking location ID"`
}

type MunicipalParkingOutput struct {
	Body struct {
		Parking []snow.MunicipalParking `json:"parking" doc:"Municipal incentive lots"`
	}
}

// RegisterParking registers parking routes.
func (h *APIHandler) RegisterParking(api huma.API) {
	huma.Get(api, "/api/v1/parking", h.GetParking, huma.OperationTags("parking"))
	huma.Post(api, "/api/v1/parking", h.CreateParking, huma.OperationTags("parking"))
	huma.Delete(api, "/api/v1/parking/{id}", h.DeleteParking, huma.OperationTags("parking"))
	huma.Get(api, "/api/v1/parking/municipal", h.GetMunicipalParking, huma.OperationTags("parking"))
}

func (h *APIHandler) GetParking(ctx context.Context, input *struct{ UserInput }) (*ParkingListOutput, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}
	list, err := h.svc.Parking.List(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list parking locations", err)
	}
	if list == nil {
		list = []snow.ParkingLocation{}
	}
	out := &ParkingListOutput{}
	out.Body.Parking = list
	return out, nil
}

func (h *APIHandler) CreateParking(ctx context.Context, input *CreateParkingInput) (*struct{ Body snow.ParkingLocation }, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}
	loc, err := h.svc.Parking.Insert(ctx, userID, input.Body.Latitude, input.Body.Longitude, input.Body.Name, input.Body.Notes)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to save parking location", err)
	}
	return &struct{ Body snow.ParkingLocation }{Body: loc}, nil
}

func (h *APIHandler) DeleteParking(ctx context.Context, input *DeleteParkingInput) (*struct{ Body MessageBody }, error) {
	userID, err := requireUser(input.UserInput)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Parking.Delete(ctx, userID, input.ID); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete parking location", err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Parking location deleted"}}, nil
}

// GetMunicipalParking returns the imported city incentive lots. No auth:
// the dataset is public.
func (h *APIHandler) GetMunicipalParking(ctx context.Context, input *struct{}) (*MunicipalParkingOutput, error) {
	lots, err := h.svc.Parking.ListMunicipal(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list municipal parking", err)
	}
	if lots == nil {
		lots = []snow.MunicipalParking{}
	}
	out := &MunicipalParkingOutput{}
	out.Body.Parking = lots
	return out, nil
}
