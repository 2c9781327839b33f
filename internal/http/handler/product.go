package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"catalogapi/internal/model"
	"catalogapi/internal/service"
)

// productResponse is the envelope for single-product operations.
type productResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Product *model.Product `json:"product"`
}

func formValue(form *multipart.Form, key string) string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func optFormValue(form *multipart.Form, key string) *string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}

// imageFromForm packages the uploaded file for the service. Oversized files
// are passed through with their declared size but without reading the bytes,
// so the size check rejects them before any buffering happens.
func imageFromForm(form *multipart.Form) (*service.ImageUpload, error) {
	files, ok := form.File["image"]
	if !ok || len(files) == 0 {
		return nil, nil
	}
	fh := files[0]

	upload := &service.ImageUpload{
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Filename:    fh.Filename,
	}
	if fh.Size > service.MaxImageBytes {
		return upload, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	upload.Data = data
	return upload, nil
}

// AddProduct handles POST /api/product/add (multipart/form-data).
func AddProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "multipart form data is required")
		}

		img, err := imageFromForm(form)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "cannot read uploaded file")
		}

		in := service.CreateProductInput{
			Name:        formValue(form, "name"),
			Title:       formValue(form, "title"),
			Description: formValue(form, "description"),
			CategoryID:  formValue(form, "category_id"),
			Image:       img,
		}

		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(productResponse{
			Success: true,
			Message: "Product created",
			Product: p,
		})
	}
}

// ListProducts handles GET /api/products with limit & offset.
func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(res.Items)
	}
}

// GetProduct handles GET /api/product/:id.
func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "Invalid product id")
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(productResponse{
			Success: true,
			Message: "Product found",
			Product: p,
		})
	}
}

// UpdateProduct handles PUT /api/product/:id (multipart, all fields optional).
func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "Invalid product id")
		}

		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "multipart form data is required")
		}

		img, err := imageFromForm(form)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "cannot read uploaded file")
		}

		in := service.UpdateProductInput{
			Name:        optFormValue(form, "name"),
			Title:       optFormValue(form, "title"),
			Description: optFormValue(form, "description"),
			CategoryID:  optFormValue(form, "category_id"),
			Image:       img,
		}

		p, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(productResponse{
			Success: true,
			Message: "Product updated",
			Product: p,
		})
	}
}

// DeleteProduct handles DELETE /api/product/:id.
func DeleteProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "Invalid product id")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(messageResponse{
			Success: true,
			Message: "Product deleted",
		})
	}
}
