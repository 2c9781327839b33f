package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"catalogapi/internal/model"
	"catalogapi/internal/service"
	serviceMocks "catalogapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// multipartBody builds a multipart request body with text fields and an
// optional file part carrying an explicit Content-Type.
func multipartBody(t *testing.T, fields map[string]string, fileField, filename, fileType string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		h.Set("Content-Type", fileType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[map[string]string](t, resp.Body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body := decodeBody[messageResponse](t, resp.Body)
		assert.False(t, body.Success)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddProduct(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := fiber.New()
	app.Post("/api/product/add", AddProduct(mockSvc))

	categoryID := uuid.New().String()
	validFields := map[string]string{
		"name":        "Widget",
		"title":       "Widget Title",
		"description": "A widget",
		"category_id": categoryID,
	}

	t.Run("created", func(t *testing.T) {
		body, contentType := multipartBody(t, validFields, "image", "widget.jpg", "image/jpeg", []byte("jpegdata"))

		created := &model.Product{
			ID:             uuid.New().String(),
			Name:           "Widget",
			Image:          "http://media.local/catalog/products/x.jpg",
			ThumbnailImage: "http://media.local/catalog/products/x_thumb.jpg",
			CategoryID:     categoryID,
		}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateProductInput) bool {
			return in.Name == "Widget" &&
				in.CategoryID == categoryID &&
				in.Image != nil &&
				in.Image.ContentType == "image/jpeg" &&
				string(in.Image.Data) == "jpegdata"
		})).Return(created, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/product/add", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		res := decodeBody[productResponse](t, resp.Body)
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.Product.Image)
		assert.NotEmpty(t, res.Product.ThumbnailImage)
		assert.Equal(t, categoryID, res.Product.CategoryID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no multipart body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/product/add", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("validation errors pass through as field map", func(t *testing.T) {
		body, contentType := multipartBody(t, validFields, "image", "anim.gif", "image/gif", []byte("gifdata"))

		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, &service.ValidationError{Fields: map[string]string{"image": "Invalid image format"}}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/product/add", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		res := decodeBody[validationResponse](t, resp.Body)
		assert.False(t, res.Success)
		assert.Equal(t, "Invalid image format", res.Errors["image"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		body, contentType := multipartBody(t, validFields, "image", "widget.jpg", "image/jpeg", []byte("jpegdata"))

		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("storage down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/product/add", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListProducts(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := fiber.New()
	app.Get("/api/products", ListProducts(mockSvc))

	t.Run("success returns a bare array", func(t *testing.T) {
		expected := &service.ProductListResult{
			Items: []model.Product{{ID: uuid.New().String(), Name: "Widget"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 20, 0).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		items := decodeBody[[]model.Product](t, resp.Body)
		assert.Len(t, items, 1)
		assert.Equal(t, "Widget", items[0].Name)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 20, 0).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetProduct(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := fiber.New()
	app.Get("/api/product/:id", GetProduct(mockSvc))

	t.Run("found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Product{ID: id, Name: "Widget"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/product/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		res := decodeBody[productResponse](t, resp.Body)
		assert.True(t, res.Success)
		assert.Equal(t, id, res.Product.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrProductNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/product/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		res := decodeBody[messageResponse](t, resp.Body)
		assert.Equal(t, "Product not found", res.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/product/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateProduct(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := fiber.New()
	app.Put("/api/product/:id", UpdateProduct(mockSvc))

	t.Run("partial text update", func(t *testing.T) {
		id := uuid.New().String()
		body, contentType := multipartBody(t, map[string]string{"title": "New Title"}, "", "", "", nil)

		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(in service.UpdateProductInput) bool {
			return in.Title != nil && *in.Title == "New Title" &&
				in.Name == nil && in.Image == nil
		})).Return(&model.Product{ID: id, Title: "New Title"}, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/product/"+id, body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		res := decodeBody[productResponse](t, resp.Body)
		assert.Equal(t, "New Title", res.Product.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("nonexistent id returns 404", func(t *testing.T) {
		id := uuid.New().String()
		body, contentType := multipartBody(t, map[string]string{"title": "x"}, "", "", "", nil)

		mockSvc.On("Update", mock.Anything, id, mock.Anything).Return(nil, service.ErrProductNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/api/product/"+id, body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		res := decodeBody[messageResponse](t, resp.Body)
		assert.Equal(t, "Product not found", res.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed id", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"title": "x"}, "", "", "", nil)

		req := httptest.NewRequest(http.MethodPut, "/api/product/bogus", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteProduct(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := fiber.New()
	app.Delete("/api/product/:id", DeleteProduct(mockSvc))

	t.Run("deleted", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/product/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		res := decodeBody[messageResponse](t, resp.Body)
		assert.True(t, res.Success)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrProductNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/product/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("storage down")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/product/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestCategoryHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockCategoryService)
	app := fiber.New()
	app.Post("/api/category/add", AddCategory(mockSvc))
	app.Get("/api/categories", ListCategories(mockSvc))

	t.Run("create category", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, "Gadgets").
			Return(&model.Category{ID: uuid.New().String(), Name: "Gadgets"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/category/add", bytes.NewReader([]byte(`{"name":"Gadgets"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		res := decodeBody[categoryResponse](t, resp.Body)
		assert.Equal(t, "Gadgets", res.Category.Name)
		mockSvc.AssertExpectations(t)
	})

	t.Run("blank name", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, "").
			Return(nil, &service.ValidationError{Fields: map[string]string{"name": "Name is required"}}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/category/add", bytes.NewReader([]byte(`{"name":""}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("list categories", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).
			Return([]model.Category{{Name: "Apparel"}, {Name: "Gadgets"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		items := decodeBody[[]model.Category](t, resp.Body)
		assert.Len(t, items, 2)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockProd := new(serviceMocks.MockProductService)
	mockCat := new(serviceMocks.MockCategoryService)
	RegisterRoutes(app, nil, mockProd, mockCat)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		res := decodeBody[messageResponse](t, resp.Body)
		assert.False(t, res.Success)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
