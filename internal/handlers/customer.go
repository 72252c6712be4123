package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storeadmin/internal/middleware"
	"github.com/example/storeadmin/internal/models"
	"github.com/example/storeadmin/internal/utils"
)

// CustomerHandler manages customer lookup and their addresses.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

type orderMetrics struct {
	OrderCount int64
	TotalSpent float64
}

// ListCustomers returns paginated customers with search. Order metrics are
// attached to every row, the same aggregation the detail view uses.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Customer{})

	if search := c.Query("search"); search != "" {
		q := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", q, q)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&customers).Error; err != nil {
		return err
	}

	metrics, err := h.orderMetricsByUser()
	if err != nil {
		return err
	}
	for i := range customers {
		m := metrics[customers[i].UserID]
		customers[i].OrderCount = m.OrderCount
		customers[i].TotalSpent = m.TotalSpent
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCustomer returns a customer with addresses, orders and order metrics.
// All joins run at read time against the live collections.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	var addresses []models.Address
	if err := h.db.Where("user_id = ?", customer.UserID).Find(&addresses).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := h.db.Preload("Items").
		Where("user_id = ?", customer.UserID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return err
	}

	for _, o := range orders {
		customer.TotalSpent += o.TotalAmount
	}
	customer.OrderCount = int64(len(orders))

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"customer":  customer,
			"addresses": addresses,
			"orders":    orders,
		},
	})
}

type customerRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// CreateCustomer persists a new customer. user_id is the join key to
// addresses and orders and must be unique.
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	userID := uuid.New()
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
		}
		userID = parsed
	}

	status := req.Status
	if status == "" {
		status = models.CustomerStatusActive
	}
	if !models.ValidCustomerStatus(status) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	var existing models.Customer
	if err := h.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "customer with this user_id already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	customer := models.Customer{
		UserID:   userID,
		Name:     req.Name,
		Email:    req.Email,
		Status:   status,
		JoinedAt: time.Now(),
	}

	if err := h.db.Create(&customer).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": customer})
}

type updateCustomerRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Status *string `json:"status"`
}

// UpdateCustomer updates profile fields and status.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	var req updateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Status != nil {
		if !models.ValidCustomerStatus(*req.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&customer).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// DeleteCustomer removes a customer. Addresses and orders keyed by the same
// user_id are left in place.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Customer{}, "id = ?", id).Error; err != nil {
		return err
	}

	if subject, ok := middleware.GetCurrentSubject(c); ok {
		log.Printf("[Customer] %s deleted customer %s", subject, id)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Address endpoints.

// ListAddresses returns the addresses owned by a customer.
func (h *CustomerHandler) ListAddresses(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	var addresses []models.Address
	if err := h.db.Where("user_id = ?", customer.UserID).Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type addressRequest struct {
	UserID     string `json:"user_id"`
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CreateAddress creates an address for a customer identified by user_id.
func (h *CustomerHandler) CreateAddress(c *fiber.Ctx) error {
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}

	address := models.Address{
		UserID:     userID,
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}

	if err := h.db.Create(&address).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

type updateAddressRequest struct {
	Label      *string `json:"label"`
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

// UpdateAddress updates an address.
func (h *CustomerHandler) UpdateAddress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.Street != nil {
		updates["street"] = *req.Street
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&models.Address{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "address updated"})
}

// DeleteAddress removes an address.
func (h *CustomerHandler) DeleteAddress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Address{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CustomerHandler) orderMetricsByUser() (map[uuid.UUID]orderMetrics, error) {
	type row struct {
		UserID     uuid.UUID
		OrderCount int64
		TotalSpent float64
	}

	var rows []row
	if err := h.db.Model(&models.Order{}).
		Select("user_id, count(*) as order_count, COALESCE(SUM(total_amount), 0) as total_spent").
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	metrics := make(map[uuid.UUID]orderMetrics, len(rows))
	for _, r := range rows {
		metrics[r.UserID] = orderMetrics{OrderCount: r.OrderCount, TotalSpent: r.TotalSpent}
	}
	return metrics, nil
}
