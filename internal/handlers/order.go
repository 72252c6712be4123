package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storeadmin/internal/middleware"
	"github.com/example/storeadmin/internal/models"
	"github.com/example/storeadmin/internal/utils"
)

// OrderHandler serves the order review views.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ListOrders returns paginated orders with optional filtering.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("payment_status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns an order enriched with its customer and, when set, the
// shipping address. user_id is unique on customers, so the lookup is
// deterministic; the enrichment itself writes nothing and repeated loads
// return identical data.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	response := fiber.Map{"order": order}

	var customer models.Customer
	if err := h.db.First(&customer, "user_id = ?", order.UserID).Error; err == nil {
		response["customer"] = customer
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if order.ShippingAddressID != nil {
		var address models.Address
		if err := h.db.First(&address, "id = ?", *order.ShippingAddressID).Error; err == nil {
			response["shipping_address"] = address
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": response})
}

// DeleteOrder removes an order and its line items.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	if subject, ok := middleware.GetCurrentSubject(c); ok {
		log.Printf("[Order] %s deleted order %s", subject, id)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
