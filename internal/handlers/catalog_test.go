package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storeadmin/internal/models"
)

func TestCategoryDeleteGuard(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	category := models.Category{Name: "Lamps"}
	require.NoError(t, db.Create(&category).Error)

	catID := category.ID
	product := models.Product{Name: "Desk Lamp", CategoryID: &catID}
	require.NoError(t, db.Create(&product).Error)

	// Referencing product present: delete must be rejected.
	resp := doJSON(t, app, http.MethodDelete, "/api/categories/"+category.ID.String(), auth, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/categories/"+category.ID.String(), auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Remove the product; delete now succeeds and the category is gone.
	require.NoError(t, db.Delete(&models.Product{}, "id = ?", product.ID).Error)

	resp = doJSON(t, app, http.MethodDelete, "/api/categories/"+category.ID.String(), auth, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/categories/"+category.ID.String(), auth, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryUpdateReplacesDocument(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	category := models.Category{
		Name:           "Lamps",
		Description:    "Desk and floor lamps",
		ThumbnailImage: "https://test-bucket.s3.amazonaws.com/products/old.png",
	}
	require.NoError(t, db.Create(&category).Error)

	// Omitted fields clear, same as product updates.
	resp := doJSON(t, app, http.MethodPut, "/api/categories/"+category.ID.String(), auth,
		map[string]interface{}{"name": "Lighting"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved models.Category
	require.NoError(t, db.First(&saved, "id = ?", category.ID).Error)
	assert.Equal(t, "Lighting", saved.Name)
	assert.Empty(t, saved.Description)
	assert.Empty(t, saved.ThumbnailImage)

	// A name is still mandatory on the replacement document.
	resp = doJSON(t, app, http.MethodPut, "/api/categories/"+category.ID.String(), auth,
		map[string]interface{}{"description": "only text"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubcategoryUpdateRequiresValidCategory(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	first := models.Category{Name: "Lamps"}
	require.NoError(t, db.Create(&first).Error)
	second := models.Category{Name: "Rugs"}
	require.NoError(t, db.Create(&second).Error)

	subcategory := models.Subcategory{Name: "Floor", CategoryID: first.ID}
	require.NoError(t, db.Create(&subcategory).Error)

	// The replacement document must carry an existing parent.
	resp := doJSON(t, app, http.MethodPut, "/api/subcategories/"+subcategory.ID.String(), auth,
		map[string]interface{}{"name": "Runner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/subcategories/"+subcategory.ID.String(), auth,
		map[string]interface{}{"name": "Runner", "category_id": second.ID.String()})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved models.Subcategory
	require.NoError(t, db.First(&saved, "id = ?", subcategory.ID).Error)
	assert.Equal(t, "Runner", saved.Name)
	assert.Equal(t, second.ID, saved.CategoryID)
}

func TestCategoryListAttachesLiveProductCounts(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	lamps := models.Category{Name: "Lamps"}
	chairs := models.Category{Name: "Chairs"}
	require.NoError(t, db.Create(&lamps).Error)
	require.NoError(t, db.Create(&chairs).Error)

	lampsID := lamps.ID
	require.NoError(t, db.Create(&models.Product{Name: "P1", CategoryID: &lampsID}).Error)
	require.NoError(t, db.Create(&models.Product{Name: "P2", CategoryID: &lampsID}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/categories/", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeBody(t, resp)
	counts := map[string]float64{}
	for _, item := range payload["data"].([]interface{}) {
		row := item.(map[string]interface{})
		counts[row["name"].(string)] = row["product_count"].(float64)
	}

	assert.Equal(t, float64(2), counts["Lamps"])
	assert.Equal(t, float64(0), counts["Chairs"])
}

func TestTagCountAggregation(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	tagA := models.Tag{Name: "sale"}
	tagB := models.Tag{Name: "new"}
	require.NoError(t, db.Create(&tagA).Error)
	require.NoError(t, db.Create(&tagB).Error)

	p1 := models.Product{Name: "P1", TagIDs: []string{tagA.ID.String(), tagB.ID.String()}}
	p2 := models.Product{Name: "P2", TagIDs: []string{tagB.ID.String()}}
	require.NoError(t, db.Create(&p1).Error)
	require.NoError(t, db.Create(&p2).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/tags/", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeBody(t, resp)
	counts := map[string]float64{}
	for _, item := range payload["data"].([]interface{}) {
		row := item.(map[string]interface{})
		counts[row["name"].(string)] = row["product_count"].(float64)
	}

	assert.Equal(t, float64(1), counts["sale"])
	assert.Equal(t, float64(2), counts["new"])
}

func TestSubcategoryParentNameResolvedAtReadTime(t *testing.T) {
	app, db, _, auth := newTestApp(t)

	category := models.Category{Name: "Lighting"}
	require.NoError(t, db.Create(&category).Error)

	resp := doJSON(t, app, http.MethodPost, "/api/subcategories/", auth, map[string]interface{}{
		"name":        "Floor Lamps",
		"category_id": category.ID.String(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	subID := created["data"].(map[string]interface{})["id"].(string)

	resp = doJSON(t, app, http.MethodGet, "/api/subcategories/"+subID, auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "Lighting", payload["data"].(map[string]interface{})["category_name"])

	// Rename the parent; the subcategory reflects it on the next read.
	require.NoError(t, db.Model(&models.Category{}).
		Where("id = ?", category.ID).
		Update("name", "Lighting & Decor").Error)

	resp = doJSON(t, app, http.MethodGet, "/api/subcategories/"+subID, auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload = decodeBody(t, resp)
	assert.Equal(t, "Lighting & Decor", payload["data"].(map[string]interface{})["category_name"])
}

func TestSubcategoryCreateRequiresExistingCategory(t *testing.T) {
	app, _, _, auth := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/subcategories/", auth, map[string]interface{}{
		"name":        "Orphan",
		"category_id": "6a9cc2d0-0000-0000-0000-000000000000",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategoryCreateWithImageUploads(t *testing.T) {
	app, _, store, auth := newTestApp(t)

	resp := doMultipart(t, app, http.MethodPost, "/api/categories/", auth,
		map[string]string{"name": "Rugs", "description": "Floor rugs"},
		map[string]fileSpec{
			"thumbnail": {name: "thumb.png", content: "thumb-bytes"},
			"hero":      {name: "hero.jpg", content: "hero-bytes"},
		},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	payload := decodeBody(t, resp)
	data := payload["data"].(map[string]interface{})

	thumbURL := data["thumbnail_image"].(string)
	heroURL := data["hero_image"].(string)
	assert.Contains(t, thumbURL, "products/")
	assert.Contains(t, thumbURL, ".png")
	assert.Contains(t, heroURL, ".jpg")
	assert.Equal(t, 2, store.count())
}

func TestCatalogRoutesRequireAuth(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/categories/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
