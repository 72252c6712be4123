package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storeadmin/internal/config"
	"github.com/example/storeadmin/internal/handlers"
	"github.com/example/storeadmin/internal/middleware"
	"github.com/example/storeadmin/internal/services"
	"github.com/example/storeadmin/internal/storage"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, store storage.ObjectStore, cfg *config.Config) {
	uploader := services.NewUploader(store)

	authHandler := handlers.NewAuthHandler(cfg)
	uploadHandler := handlers.NewUploadHandler(store)
	catalogHandler := handlers.NewCatalogHandler(db, uploader)
	productHandler := handlers.NewProductHandler(db, uploader)
	customerHandler := handlers.NewCustomerHandler(db)
	orderHandler := handlers.NewOrderHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)

	api := app.Group("/api")

	// Public routes
	api.Post("/auth/login", authHandler.Login)
	api.Post("/upload", uploadHandler.Upload)

	// Admin routes
	admin := api.Group("", middleware.AuthMiddleware(cfg))

	categories := admin.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Post("/", catalogHandler.CreateCategory)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Put("/:id", catalogHandler.UpdateCategory)
	categories.Delete("/:id", catalogHandler.DeleteCategory)

	subcategories := admin.Group("/subcategories")
	subcategories.Get("/", catalogHandler.ListSubcategories)
	subcategories.Post("/", catalogHandler.CreateSubcategory)
	subcategories.Get("/:id", catalogHandler.GetSubcategory)
	subcategories.Put("/:id", catalogHandler.UpdateSubcategory)
	subcategories.Delete("/:id", catalogHandler.DeleteSubcategory)

	tags := admin.Group("/tags")
	tags.Get("/", catalogHandler.ListTags)
	tags.Post("/", catalogHandler.CreateTag)
	tags.Get("/:id", catalogHandler.GetTag)
	tags.Put("/:id", catalogHandler.UpdateTag)
	tags.Delete("/:id", catalogHandler.DeleteTag)

	products := admin.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Post("/", productHandler.CreateProduct)
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", productHandler.UpdateProduct)
	products.Delete("/:id", productHandler.DeleteProduct)

	customers := admin.Group("/customers")
	customers.Get("/", customerHandler.ListCustomers)
	customers.Post("/", customerHandler.CreateCustomer)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Put("/:id", customerHandler.UpdateCustomer)
	customers.Delete("/:id", customerHandler.DeleteCustomer)
	customers.Get("/:id/addresses", customerHandler.ListAddresses)

	addresses := admin.Group("/addresses")
	addresses.Post("/", customerHandler.CreateAddress)
	addresses.Put("/:id", customerHandler.UpdateAddress)
	addresses.Delete("/:id", customerHandler.DeleteAddress)

	orders := admin.Group("/orders")
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Delete("/:id", orderHandler.DeleteOrder)

	dashboard := admin.Group("/dashboard")
	dashboard.Get("/stats", dashboardHandler.Stats)
	dashboard.Get("/recent-orders", dashboardHandler.RecentOrders)
}
