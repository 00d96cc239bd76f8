package handlers

import (
	nethttp "net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-garage-service/internal/api/dto"
	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/repository"
	"github.com/spec-kit/parking-garage-service/internal/service"
	"github.com/spec-kit/parking-garage-service/pkg/util"
)

// ParkingHandler manages check-in, checkout and garage inspection endpoints.
type ParkingHandler struct {
	parking *service.ParkingService
	batch   *service.BatchService
}

// NewParkingHandler constructs handler.
func NewParkingHandler(parking *service.ParkingService, batch *service.BatchService) *ParkingHandler {
	return &ParkingHandler{parking: parking, batch: batch}
}

// CheckIn POST /api/parking/checkin.
func (h *ParkingHandler) CheckIn(c *fiber.Ctx) error {
	input, err := parseCheckInRequest(c)
	if err != nil {
		return err
	}
	result, offer, err := h.parking.CheckIn(c.UserContext(), input)
	if err != nil {
		return err
	}
	if offer != nil {
		return c.Status(nethttp.StatusConflict).JSON(fiber.Map{"data": dto.UpgradeOfferResponse{
			RequiresUpgrade:     true,
			SuggestedTicketType: offer.SuggestedTicketType,
			UpgradeCost:         offer.UpgradeCost,
			Message:             offer.Message,
		}})
	}
	return c.Status(nethttp.StatusCreated).JSON(fiber.Map{"data": checkInResponse(result)})
}

// CheckInWithUpgrade POST /api/parking/checkin-with-upgrade.
func (h *ParkingHandler) CheckInWithUpgrade(c *fiber.Ctx) error {
	input, err := parseCheckInRequest(c)
	if err != nil {
		return err
	}
	result, err := h.parking.CheckInWithUpgrade(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(nethttp.StatusCreated).JSON(fiber.Map{"data": checkInResponse(result)})
}

// CheckOut POST /api/parking/checkout.
func (h *ParkingHandler) CheckOut(c *fiber.Ctx) error {
	var req dto.CheckOutRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.LicensePlate == "" || req.LotNumber <= 0 {
		return util.NewValidationError("license_plate and lot_number required", nil)
	}
	result, err := h.parking.CheckOut(c.UserContext(), req.LicensePlate, req.LotNumber)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CheckOutResponse{
		VehicleName:  result.VehicleName,
		LotNumber:    result.LotNumber,
		CheckInTime:  result.CheckInTime,
		CheckOutTime: result.CheckOutTime,
		TotalCost:    result.TotalCost,
	}})
}

// AsyncCheckIn POST /api/parking/async-checkin.
func (h *ParkingHandler) AsyncCheckIn(c *fiber.Ctx) error {
	var req dto.AsyncCheckInRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return util.NewValidationError("invalid payload", nil)
		}
	}
	if req.VehicleCount != nil && *req.VehicleCount <= 0 {
		return util.NewValidationError("vehicle_count must be positive", nil)
	}
	result, err := h.batch.AsyncCheckIn(c.UserContext(), req.VehicleCount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// GarageState GET /api/parking/garage-state.
func (h *ParkingHandler) GarageState(c *fiber.Ctx) error {
	filter, err := parseLotQuery(c)
	if err != nil {
		return err
	}
	state, err := h.parking.GarageState(c.UserContext(), filter)
	if err != nil {
		return err
	}
	lots := make([]dto.LotView, 0, len(state.Lots))
	for i := range state.Lots {
		lots = append(lots, lotView(&state.Lots[i]))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"lots":       lots,
		"statistics": state.Statistics,
	}})
}

// VehiclesByTicketType GET /api/parking/vehicles-by-ticket-type/:ticketType.
func (h *ParkingHandler) VehiclesByTicketType(c *fiber.Ctx) error {
	ticketType, err := domain.ParseTicketType(c.Params("ticketType"))
	if err != nil {
		return util.NewUnknownTicketType(c.Params("ticketType"))
	}
	vehicles, err := h.parking.VehiclesByTicketType(c.UserContext(), ticketType)
	if err != nil {
		return err
	}
	items := make([]dto.VehicleView, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, vehicleView(&vehicles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GenerateRandomData GET /api/parking/generate-random-data.
func (h *ParkingHandler) GenerateRandomData(c *fiber.Ctx) error {
	input, err := h.batch.GenerateRandomRequest(c.UserContext())
	if err != nil {
		return err
	}
	if input == nil {
		return c.JSON(fiber.Map{"data": dto.RandomCheckInData{
			Available: false,
			Message:   "The garage is full, no vehicles can be checked in",
		}})
	}
	return c.JSON(fiber.Map{"data": dto.RandomCheckInData{
		Available:    true,
		Name:         input.Name,
		LicensePlate: input.LicensePlate,
		PhoneNumber:  input.Phone,
		TicketType:   string(input.TicketType),
		VehicleType:  string(input.VehicleType),
		Height:       input.Dimensions.Height,
		Width:        input.Dimensions.Width,
		Length:       input.Dimensions.Length,
	}})
}

func parseCheckInRequest(c *fiber.Ctx) (service.CheckInInput, error) {
	var req dto.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return service.CheckInInput{}, util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.LicensePlate == "" {
		return service.CheckInInput{}, util.NewValidationError("name and license_plate required", nil)
	}
	if req.Height <= 0 || req.Width <= 0 || req.Length <= 0 {
		return service.CheckInInput{}, util.NewValidationError("height, width and length must be positive", nil)
	}
	ticketType, err := domain.ParseTicketType(req.TicketType)
	if err != nil {
		return service.CheckInInput{}, util.NewUnknownTicketType(req.TicketType)
	}
	vehicleType, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return service.CheckInInput{}, util.NewUnknownVehicleType(req.VehicleType)
	}
	return service.CheckInInput{
		Name:         strings.TrimSpace(req.Name),
		LicensePlate: req.LicensePlate,
		Phone:        strings.TrimSpace(req.PhoneNumber),
		TicketType:   ticketType,
		VehicleType:  vehicleType,
		Dimensions: domain.Dimensions{
			Height: req.Height,
			Width:  req.Width,
			Length: req.Length,
		},
	}, nil
}

func parseLotQuery(c *fiber.Ctx) (repository.LotFilter, error) {
	filter := repository.LotFilter{}
	if raw := c.Query("ticketType", c.Query("ticket_type")); raw != "" {
		ticketType, err := domain.ParseTicketType(raw)
		if err != nil {
			return filter, util.NewUnknownTicketType(raw)
		}
		filter.TicketType = &ticketType
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseLotStatus(raw)
		if !ok {
			return filter, util.NewValidationError("unknown lot status", map[string]any{"status": raw})
		}
		filter.Status = &status
	}
	return filter, nil
}

func checkInResponse(result *service.CheckInResult) dto.CheckInResponse {
	return dto.CheckInResponse{
		LotNumber:      result.LotNumber,
		TicketType:     result.TicketType,
		UpgradeApplied: result.UpgradeApplied,
		Message:        result.Message,
	}
}

func lotView(lot *domain.Lot) dto.LotView {
	view := dto.LotView{
		LotNumber:  lot.LotNumber,
		TicketType: lot.TicketType,
		Status:     lot.Status,
	}
	if lot.Vehicle != nil {
		vehicle := vehicleView(lot.Vehicle)
		view.Vehicle = &vehicle
	}
	return view
}

func vehicleView(vehicle *domain.ParkedVehicle) dto.VehicleView {
	return dto.VehicleView{
		ID:           vehicle.ID,
		Name:         vehicle.Name,
		LicensePlate: vehicle.LicensePlate,
		PhoneNumber:  vehicle.Phone,
		TicketType:   vehicle.TicketType,
		VehicleType:  vehicle.VehicleType,
		Height:       vehicle.Height,
		Width:        vehicle.Width,
		Length:       vehicle.Length,
		LotNumber:    vehicle.LotNumber,
		CheckInTime:  vehicle.CheckInTime,
	}
}
