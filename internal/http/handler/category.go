package handler

import (
	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/model"
	"catalogapi/internal/service"
)

type categoryResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Category *model.Category `json:"category"`
}

type addCategoryRequest struct {
	Name string `json:"name"`
}

// AddCategory handles POST /api/category/add.
func AddCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addCategoryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		cat, err := svc.Create(c.UserContext(), req.Name)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(categoryResponse{
			Success:  true,
			Message:  "Category created",
			Category: cat,
		})
	}
}

// ListCategories handles GET /api/categories.
func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(items)
	}
}
