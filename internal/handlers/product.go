package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storeadmin/internal/middleware"
	"github.com/example/storeadmin/internal/models"
	"github.com/example/storeadmin/internal/services"
	"github.com/example/storeadmin/internal/utils"
)

// ProductHandler manages product CRUD, including the three image slots.
type ProductHandler struct {
	db       *gorm.DB
	uploader *services.Uploader
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, uploader *services.Uploader) *ProductHandler {
	return &ProductHandler{db: db, uploader: uploader}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	if v := c.Query("subcategory_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("subcategory_id = ?", id)
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", q, q)
	}

	// Tag membership lives in a serialized column, so the matching ID set is
	// computed in Go, same as the tag counts. It narrows the query before the
	// count and the page are taken.
	if v := c.Query("tag_id"); v != "" {
		var rows []models.Product
		if err := query.Session(&gorm.Session{}).
			Select("id", "tag_ids").
			Find(&rows).Error; err != nil {
			return err
		}
		matched := make([]uuid.UUID, 0, len(rows))
		for _, p := range rows {
			for _, tagID := range p.TagIDs {
				if tagID == v {
					matched = append(matched, p.ID)
					break
				}
			}
		}
		query = query.Where("id IN ?", matched)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads a single product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name          string   `json:"name" form:"name"`
	Description   string   `json:"description" form:"description"`
	Image         string   `json:"image" form:"image"`
	Image2        string   `json:"image2" form:"image2"`
	Image3        string   `json:"image3" form:"image3"`
	Price         float64  `json:"price" form:"price"`
	Stock         int      `json:"stock" form:"stock"`
	Rating        float64  `json:"rating" form:"rating"`
	CategoryID    string   `json:"category_id" form:"category_id"`
	SubcategoryID string   `json:"subcategory_id" form:"subcategory_id"`
	TagIDs        []string `json:"tag_ids" form:"tag_ids"`
	Details       []string `json:"details" form:"details"`
	Weight        float64  `json:"weight" form:"weight"`
	WeightUnit    string   `json:"weight_unit" form:"weight_unit"`
}

// CreateProduct handles product creation. Image files on a multipart request
// are uploaded concurrently; if any upload fails the product is not written,
// though files that reached storage before the failure stay there.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	product, err := h.buildProductFromRequest(req)
	if err != nil {
		return err
	}

	if err := h.applyProductImages(c, &product); err != nil {
		return err
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct overwrites an existing product with the submitted fields,
// re-uploading whichever image slots carry new files.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var existing models.Product
	if err := h.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	product, err := h.buildProductFromRequest(req)
	if err != nil {
		return err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	if err := h.applyProductImages(c, &product); err != nil {
		return err
	}

	// Last write wins: no concurrency token is checked before the overwrite.
	if err := h.db.Save(&product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product. Its uploaded images stay in the bucket.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return err
	}

	if subject, ok := middleware.GetCurrentSubject(c); ok {
		log.Printf("[Product] %s deleted product %s", subject, id)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) buildProductFromRequest(req productRequest) (models.Product, error) {
	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Image2:      req.Image2,
		Image3:      req.Image3,
		Price:       req.Price,
		Stock:       req.Stock,
		Rating:      req.Rating,
		TagIDs:      req.TagIDs,
		Details:     req.Details,
		Weight:      req.Weight,
		WeightUnit:  req.WeightUnit,
	}

	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return product, fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		product.CategoryID = &id
	}
	if req.SubcategoryID != "" {
		id, err := uuid.Parse(req.SubcategoryID)
		if err != nil {
			return product, fiber.NewError(fiber.StatusBadRequest, "invalid subcategory_id")
		}
		product.SubcategoryID = &id
	}

	return product, nil
}

// applyProductImages uploads the files in slots "image", "image2" and
// "image3" concurrently and joins before the document write. Any failure
// aborts the save; successfully stored files are not deleted.
func (h *ProductHandler) applyProductImages(c *fiber.Ctx, product *models.Product) error {
	files := []*multipart.FileHeader{
		formFileOrNil(c, "image"),
		formFileOrNil(c, "image2"),
		formFileOrNil(c, "image3"),
	}
	if files[0] == nil && files[1] == nil && files[2] == nil {
		return nil
	}

	urls, err := h.uploader.UploadAll(c.Context(), files)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "image upload failed")
	}

	slots := []*string{&product.Image, &product.Image2, &product.Image3}
	for i, url := range urls {
		if url != "" {
			*slots[i] = url
		}
	}
	return nil
}
