package handlers

import (
	"errors"
	"time"

	"parkwatch/internal/models"
	"parkwatch/internal/services"
	"parkwatch/internal/utils"
	"parkwatch/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ViolationHandler struct {
	violationService services.ViolationService
}

func NewViolationHandler(violationService services.ViolationService) *ViolationHandler {
	return &ViolationHandler{
		violationService: violationService,
	}
}

// RecordViolation files a violation against a spot. A partial update still
// returns the persisted record with a 207.
func (h *ViolationHandler) RecordViolation(c *gin.Context) {
	var request validators.RecordViolationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	req := services.RecordViolationRequest{
		SpotID:      c.Param("spot_id"),
		VehicleRef:  request.VehicleRef,
		Type:        models.ViolationType(request.Type),
		Description: request.Description,
	}
	for _, e := range request.Evidence {
		ts := e.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		req.Evidence = append(req.Evidence, models.Evidence{URL: e.URL, Timestamp: ts})
	}

	record, err := h.violationService.RecordViolation(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrPartialUpdate) {
			c.JSON(207, utils.APIResponse{
				Status:  utils.StatusSuccess,
				Message: "Violation recorded; vehicle aggregate update pending",
				Data:    record,
				Error: &utils.APIError{
					Code:    utils.ErrCodePartialUpdate,
					Message: err.Error(),
				},
				Timestamp: time.Now(),
			})
			return
		}
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, "Violation recorded successfully", record)
}

// ListViolations lists all violations recorded against a spot
func (h *ViolationHandler) ListViolations(c *gin.Context) {
	violations, err := h.violationService.ListViolations(c.Request.Context(), c.Param("spot_id"))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponseWithMeta(c, "Violations retrieved successfully", violations, &utils.Meta{
		Count: len(violations),
	})
}

// UpdateViolationStatus moves a violation through its status lifecycle
func (h *ViolationHandler) UpdateViolationStatus(c *gin.Context) {
	violationID, ok := h.violationID(c)
	if !ok {
		return
	}

	var request validators.UpdateViolationStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	record, err := h.violationService.UpdateViolationStatus(c.Request.Context(),
		c.Param("spot_id"), violationID, models.ViolationStatus(request.Status))
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Violation status updated successfully", record)
}

// IssueFine attaches a fine to an open violation
func (h *ViolationHandler) IssueFine(c *gin.Context) {
	violationID, ok := h.violationID(c)
	if !ok {
		return
	}

	var request validators.IssueFineRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); errs != nil {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	record, err := h.violationService.IssueFine(c.Request.Context(), c.Param("spot_id"), violationID, request.Amount)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Fine issued successfully", record)
}

// MarkFinePaid settles a fine
func (h *ViolationHandler) MarkFinePaid(c *gin.Context) {
	violationID, ok := h.violationID(c)
	if !ok {
		return
	}

	record, err := h.violationService.MarkFinePaid(c.Request.Context(), c.Param("spot_id"), violationID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Fine marked paid successfully", record)
}

// WaiveFine voids an unpaid fine
func (h *ViolationHandler) WaiveFine(c *gin.Context) {
	violationID, ok := h.violationID(c)
	if !ok {
		return
	}

	record, err := h.violationService.WaiveFine(c.Request.Context(), c.Param("spot_id"), violationID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Fine waived successfully", record)
}

func (h *ViolationHandler) violationID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("violation_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid violation ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
