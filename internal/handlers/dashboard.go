package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storeadmin/internal/models"
)

// DashboardHandler serves the landing-page aggregates.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats returns the headline counters: products, orders, customers and
// revenue. Everything is recomputed per request.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	var totalProducts int64
	if err := h.db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	var totalCustomers int64
	if err := h.db.Model(&models.Customer{}).Count(&totalCustomers).Error; err != nil {
		return err
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	// Orders by payment status; anything outside paid/pending rolls into other.
	type statusCount struct {
		PaymentStatus string
		Count         int64
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("payment_status, count(*) as count").
		Group("payment_status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := map[string]int64{}
	for _, sc := range statusCounts {
		switch sc.PaymentStatus {
		case models.PaymentStatusPaid, models.PaymentStatusPending:
			ordersByStatus[sc.PaymentStatus] += sc.Count
		default:
			ordersByStatus[models.PaymentStatusOther] += sc.Count
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_products":   totalProducts,
			"total_orders":     totalOrders,
			"total_customers":  totalCustomers,
			"total_revenue":    totalRevenue,
			"orders_by_status": ordersByStatus,
		},
	})
}

// RecentOrders returns the five most recent orders with customer names
// resolved at read time.
func (h *DashboardHandler) RecentOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := h.db.Preload("Items").
		Order("created_at desc").
		Limit(5).
		Find(&orders).Error; err != nil {
		return err
	}

	userIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
	}

	names := map[uuid.UUID]string{}
	if len(userIDs) > 0 {
		var customers []models.Customer
		if err := h.db.Where("user_id IN ?", userIDs).Find(&customers).Error; err != nil {
			return err
		}
		for _, cust := range customers {
			names[cust.UserID] = cust.Name
		}
	}

	type recentOrder struct {
		models.Order
		CustomerName string `json:"customer_name"`
	}

	result := make([]recentOrder, len(orders))
	for i, o := range orders {
		result[i] = recentOrder{Order: o, CustomerName: names[o.UserID]}
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}
