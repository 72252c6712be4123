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

// CatalogHandler manages categories, subcategories and tags.
type CatalogHandler struct {
	db       *gorm.DB
	uploader *services.Uploader
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB, uploader *services.Uploader) *CatalogHandler {
	return &CatalogHandler{db: db, uploader: uploader}
}

// ListCategories returns paginated categories with their live product counts.
// Counts are recomputed on every call, never cached.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var categories []models.Category
	var total int64

	if err := h.db.Model(&models.Category{}).Count(&total).Error; err != nil {
		return err
	}

	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&categories).Error; err != nil {
		return err
	}

	counts, err := h.productCountsByCategory()
	if err != nil {
		return err
	}
	for i := range categories {
		categories[i].ProductCount = counts[categories[i].ID]
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    categories,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCategory returns a single category by ID with its live product count.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	if err := h.db.Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&category.ProductCount).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

type categoryRequest struct {
	Name           string `json:"name" form:"name"`
	Description    string `json:"description" form:"description"`
	ThumbnailImage string `json:"thumbnail_image" form:"thumbnail_image"`
	HeroImage      string `json:"hero_image" form:"hero_image"`
}

// CreateCategory persists a new category. Multipart requests may carry
// "thumbnail" and "hero" files, which are uploaded before the row is written;
// JSON requests pass already-uploaded URLs instead.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	category := models.Category{
		Name:           req.Name,
		Description:    req.Description,
		ThumbnailImage: req.ThumbnailImage,
		HeroImage:      req.HeroImage,
	}

	if err := h.applyCategoryImages(c, &category); err != nil {
		return err
	}

	if err := h.db.Create(&category).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates an existing category, re-uploading any changed
// image files first.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	// The submitted document replaces the stored one, same as product
	// updates. An omitted description or image URL clears the field.
	category.Name = req.Name
	category.Description = req.Description
	category.ThumbnailImage = req.ThumbnailImage
	category.HeroImage = req.HeroImage

	if err := h.applyCategoryImages(c, &category); err != nil {
		return err
	}

	if err := h.db.Save(&category).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category unless products still reference it. The
// count is recomputed here, not taken from the list view.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var count int64
	if err := h.db.Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, "category has referencing products")
	}

	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return err
	}

	if subject, ok := middleware.GetCurrentSubject(c); ok {
		log.Printf("[Catalog] %s deleted category %s", subject, id)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// applyCategoryImages uploads the image files present on a multipart request
// and writes the returned URLs into the category. Files that made it to
// storage before a later failure stay there.
func (h *CatalogHandler) applyCategoryImages(c *fiber.Ctx, category *models.Category) error {
	files := []*multipart.FileHeader{
		formFileOrNil(c, "thumbnail"),
		formFileOrNil(c, "hero"),
	}
	if files[0] == nil && files[1] == nil {
		return nil
	}

	urls, err := h.uploader.UploadAll(c.Context(), files)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "image upload failed")
	}

	if urls[0] != "" {
		category.ThumbnailImage = urls[0]
	}
	if urls[1] != "" {
		category.HeroImage = urls[1]
	}
	return nil
}

// Subcategory endpoints.

// ListSubcategories returns paginated subcategories with their parent
// category names resolved from the live category rows.
func (h *CatalogHandler) ListSubcategories(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Subcategory{})

	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var subcategories []models.Subcategory
	if err := query.Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&subcategories).Error; err != nil {
		return err
	}

	names, err := h.categoryNames()
	if err != nil {
		return err
	}
	for i := range subcategories {
		subcategories[i].CategoryName = names[subcategories[i].CategoryID]
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    subcategories,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetSubcategory returns a single subcategory with its parent category name.
func (h *CatalogHandler) GetSubcategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var subcategory models.Subcategory
	if err := h.db.First(&subcategory, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "subcategory not found")
		}
		return err
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", subcategory.CategoryID).Error; err == nil {
		subcategory.CategoryName = category.Name
	}

	return c.JSON(fiber.Map{"success": true, "data": subcategory})
}

type subcategoryRequest struct {
	Name       string `json:"name" form:"name"`
	CategoryID string `json:"category_id" form:"category_id"`
}

// CreateSubcategory persists a new subcategory. The parent category must
// exist at write time.
func (h *CatalogHandler) CreateSubcategory(c *fiber.Ctx) error {
	var req subcategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	categoryID, err := h.resolveCategoryID(req.CategoryID)
	if err != nil {
		return err
	}

	subcategory := models.Subcategory{
		Name:       req.Name,
		CategoryID: categoryID,
	}

	if err := h.db.Create(&subcategory).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": subcategory})
}

// UpdateSubcategory updates an existing subcategory.
func (h *CatalogHandler) UpdateSubcategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var subcategory models.Subcategory
	if err := h.db.First(&subcategory, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "subcategory not found")
		}
		return err
	}

	var req subcategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	categoryID, err := h.resolveCategoryID(req.CategoryID)
	if err != nil {
		return err
	}

	subcategory.Name = req.Name
	subcategory.CategoryID = categoryID

	if err := h.db.Save(&subcategory).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": subcategory})
}

// DeleteSubcategory removes a subcategory. Products keep whatever
// subcategory_id they carry; there is no guard on this relationship.
func (h *CatalogHandler) DeleteSubcategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Subcategory{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Tag endpoints.

// ListTags returns paginated tags with product counts tallied over the
// tag_ids lists of all products. A product with k tags increments k counters.
func (h *CatalogHandler) ListTags(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var tags []models.Tag
	var total int64

	if err := h.db.Model(&models.Tag{}).Count(&total).Error; err != nil {
		return err
	}

	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&tags).Error; err != nil {
		return err
	}

	counts, err := h.productCountsByTag()
	if err != nil {
		return err
	}
	for i := range tags {
		tags[i].ProductCount = counts[tags[i].ID.String()]
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tags,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetTag returns a single tag with its live product count.
func (h *CatalogHandler) GetTag(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var tag models.Tag
	if err := h.db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "tag not found")
		}
		return err
	}

	counts, err := h.productCountsByTag()
	if err != nil {
		return err
	}
	tag.ProductCount = counts[tag.ID.String()]

	return c.JSON(fiber.Map{"success": true, "data": tag})
}

type tagRequest struct {
	Name string `json:"name" form:"name"`
}

// CreateTag persists a new tag.
func (h *CatalogHandler) CreateTag(c *fiber.Ctx) error {
	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	tag := models.Tag{Name: req.Name}
	if err := h.db.Create(&tag).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": tag})
}

// UpdateTag renames an existing tag.
func (h *CatalogHandler) UpdateTag(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var tag models.Tag
	if err := h.db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "tag not found")
		}
		return err
	}

	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	tag.Name = req.Name
	if err := h.db.Save(&tag).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": tag})
}

// DeleteTag removes a tag. Products keep the deleted id in their tag_ids
// lists; there is no guard on this relationship.
func (h *CatalogHandler) DeleteTag(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Tag{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Read-time aggregation helpers.

func (h *CatalogHandler) productCountsByCategory() (map[uuid.UUID]int64, error) {
	type row struct {
		CategoryID uuid.UUID
		Count      int64
	}

	var rows []row
	if err := h.db.Model(&models.Product{}).
		Select("category_id, count(*) as count").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

// productCountsByTag tallies tag references in Go: tag_ids is a serialized
// JSON column, so the scan happens over decoded products rather than in SQL.
func (h *CatalogHandler) productCountsByTag() (map[string]int64, error) {
	var products []models.Product
	if err := h.db.Select("id", "tag_ids").Find(&products).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, p := range products {
		for _, tagID := range p.TagIDs {
			counts[tagID]++
		}
	}
	return counts, nil
}

func (h *CatalogHandler) categoryNames() (map[uuid.UUID]string, error) {
	var categories []models.Category
	if err := h.db.Select("id", "name").Find(&categories).Error; err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}

// resolveCategoryID parses and verifies a category reference; both failure
// modes are client errors.
func (h *CatalogHandler) resolveCategoryID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "category does not exist")
		}
		return uuid.Nil, err
	}

	return id, nil
}

func formFileOrNil(c *fiber.Ctx, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
