package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/automartines/autoonline/internal/vehicle"
	"github.com/gin-gonic/gin"
)

type VehicleLookup interface {
	Lookup(ctx context.Context, hsn, tsn string) (vehicle.Prefill, error)
}

type VehiclesHandler struct {
	lookup VehicleLookup
}

func NewVehiclesHandler(lookup VehicleLookup) *VehiclesHandler {
	return &VehiclesHandler{lookup: lookup}
}

// GET /vehicles/lookup?hsn=0603&tsn=BGU
func (h *VehiclesHandler) Lookup(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 12*time.Second)
	defer cancel()

	p, err := h.lookup.Lookup(cctx, ctx.Query("hsn"), ctx.Query("tsn"))
	if err != nil {
		switch {
		case errors.Is(err, vehicle.ErrInvalidCode):
			RespondBadRequest(ctx, "HSN must be 4 digits and TSN 3 characters", gin.H{
				"fields": []FieldError{
					{Field: "hsn", Rule: "len", Param: "4", Message: validationMessage("len", "4")},
					{Field: "tsn", Rule: "len", Param: "3", Message: validationMessage("len", "3")},
				},
			})
		case errors.Is(err, vehicle.ErrNotFound):
			RespondNotFound(ctx, "No vehicle data found for this HSN/TSN combination")
		case errors.Is(err, vehicle.ErrNotConfigured):
			RespondError(ctx, http.StatusServiceUnavailable, "lookup_unavailable", "Vehicle lookup is not configured", nil)
		default:
			RespondBadGateway(ctx, "Failed to fetch vehicle data")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"vehicle": p})
}
