package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storeadmin/internal/models"
)

func TestProductCreateWithConcurrentImageUploads(t *testing.T) {
	app, db, store, auth := newTestApp(t)

	resp := doMultipart(t, app, http.MethodPost, "/api/products/", auth,
		map[string]string{
			"name":        "Desk Lamp",
			"description": "Adjustable arm",
			"price":       "49.90",
			"stock":       "12",
			"weight":      "1.4",
			"weight_unit": "kg",
		},
		map[string]fileSpec{
			"image":  {name: "front.png", content: "front-bytes"},
			"image2": {name: "side.jpg", content: "side-bytes"},
		},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	payload := decodeBody(t, resp)
	data := payload["data"].(map[string]interface{})

	assert.Contains(t, data["image"].(string), ".png")
	assert.Contains(t, data["image2"].(string), ".jpg")
	assert.Equal(t, "", data["image3"])
	assert.Equal(t, 2, store.count())

	var saved models.Product
	require.NoError(t, db.First(&saved, "name = ?", "Desk Lamp").Error)
	assert.Equal(t, 49.90, saved.Price)
	assert.Equal(t, 12, saved.Stock)
}

func TestProductSaveAbortsWhenAnyImageUploadFails(t *testing.T) {
	app, db, store, auth := newTestApp(t)

	// The fake store rejects the "bad" payload; the other two slots succeed
	// and their objects stay in storage even though no product is written.
	resp := doMultipart(t, app, http.MethodPost, "/api/products/", auth,
		map[string]string{"name": "Doomed Product"},
		map[string]fileSpec{
			"image":  {name: "ok1.png", content: "ok-1"},
			"image2": {name: "broken.png", content: "bad"},
			"image3": {name: "ok2.png", content: "ok-2"},
		},
	)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)

	// No compensating delete: whatever reached storage stays there.
	assert.LessOrEqual(t, store.count(), 2)
}

func TestProductSparseImageSlots(t *testing.T) {
	app, _, _, auth := newTestApp(t)

	// Only slot 2 populated is legal.
	resp := doJSON(t, app, http.MethodPost, "/api/products/", auth, map[string]interface{}{
		"name":   "Slot Two Only",
		"image2": "https://test-bucket.s3.amazonaws.com/products/only.png",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	payload := decodeBody(t, resp)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "", data["image"])
	assert.Equal(t, "https://test-bucket.s3.amazonaws.com/products/only.png", data["image2"])
	assert.Equal(t, "", data["image3"])
}

func TestProductUpdateOverwritesDocument(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	product := models.Product{Name: "Old Name", Price: 10, TagIDs: []string{"a"}}
	require.NoError(t, db.Create(&product).Error)

	resp := doJSON(t, app, http.MethodPut, "/api/products/"+product.ID.String(), auth, map[string]interface{}{
		"name":    "New Name",
		"price":   25.5,
		"tag_ids": []string{"b", "c"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved models.Product
	require.NoError(t, db.First(&saved, "id = ?", product.ID).Error)
	assert.Equal(t, "New Name", saved.Name)
	assert.Equal(t, 25.5, saved.Price)
	assert.Equal(t, []string{"b", "c"}, saved.TagIDs)
}

func TestProductListFilterByTag(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	require.NoError(t, db.Create(&models.Product{Name: "Tagged", TagIDs: []string{"tag-1"}}).Error)
	require.NoError(t, db.Create(&models.Product{Name: "Untagged"}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/products/?tag_id=tag-1", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeBody(t, resp)
	rows := payload["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Tagged", rows[0].(map[string]interface{})["name"])
}

func TestProductListTagFilterPaginates(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	tagged := models.Product{Name: "Tagged", TagIDs: []string{"tag-1"}}
	tagged.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&tagged).Error)
	untagged := models.Product{Name: "Untagged"}
	untagged.CreatedAt = time.Now()
	require.NoError(t, db.Create(&untagged).Error)

	// The newer untagged product must not occupy the single page slot, and
	// the total must reflect only tag matches.
	resp := doJSON(t, app, http.MethodGet, "/api/products/?tag_id=tag-1&limit=1&page=1", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeBody(t, resp)
	rows := payload["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Tagged", rows[0].(map[string]interface{})["name"])

	pagination := payload["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total_items"])
}
