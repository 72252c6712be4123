package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storeadmin/internal/storage"
)

// UploadHandler exposes the raw storage gateway endpoint. Its JSON contract
// is fixed: stored URLs across the catalog depend on it.
type UploadHandler struct {
	store storage.ObjectStore
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(store storage.ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload accepts a multipart body with fields "file" and "path", writes the
// payload to the bucket under path and returns the public URL. Responses:
// 200 {"success":true,"url":...}, 400 {"error":...} when the file is missing,
// 500 {"error":...} on any provider failure. Provider errors are logged for
// operators; clients only see the fixed message.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
	}

	path := c.FormValue("path")

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[Upload] open multipart file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file"})
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.store.Upload(c.Context(), path, file, fileHeader.Size, contentType); err != nil {
		log.Printf("[Upload] store %q: %v", path, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     h.store.PublicURL(path),
	})
}
