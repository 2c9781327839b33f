package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"catalogapi/internal/cache"
	"catalogapi/internal/imageproc"
	"catalogapi/internal/model"
	"catalogapi/internal/repository"
	"catalogapi/internal/storage"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrProductNotFound = errors.New("product not found")
)

const (
	productFolder = "products"

	// MaxImageBytes caps uploaded originals at 2 MiB.
	MaxImageBytes = 2 << 20

	msgNameRequired        = "Name is required"
	msgTitleRequired       = "Title is required"
	msgDescriptionRequired = "Description is required"
	msgCategoryRequired    = "Category is required"
	msgCategoryInvalid     = "Invalid category id"
	msgCategoryMissing     = "Category does not exist"
	msgImageRequired       = "Image is required"
	msgImageFormat         = "Invalid image format"
	msgImageTooLarge       = "Image must not exceed 2MB"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ImageUpload carries one uploaded image through validation and transform.
// Data is left nil for oversized uploads so the bytes are never read.
type ImageUpload struct {
	Data        []byte
	Size        int64
	ContentType string
	Filename    string
}

// CreateProductInput holds the multipart fields of a create request.
type CreateProductInput struct {
	Name        string
	Title       string
	Description string
	CategoryID  string
	Image       *ImageUpload
}

// UpdateProductInput holds the optional fields of an update request.
// Nil pointers mean the field was absent and the stored value is kept.
type UpdateProductInput struct {
	Name        *string
	Title       *string
	Description *string
	CategoryID  *string
	Image       *ImageUpload
}

// ProductListResult is the service-level DTO for paginated products.
type ProductListResult struct {
	Items []model.Product `json:"data"`
	Total int             `json:"total"`
}

// ProductService defines the use cases for managing catalog products.
type ProductService interface {
	// Create validates the input, derives and uploads both images, and
	// persists the product. Validation failures are returned as *ValidationError.
	Create(ctx context.Context, in CreateProductInput) (*model.Product, error)

	// Update overwrites the supplied fields of an existing product. A new
	// image replaces both remote assets; old assets are removed after the
	// record is persisted.
	Update(ctx context.Context, id string, in UpdateProductInput) (*model.Product, error)

	// Delete removes the product's remote assets and its record.
	Delete(ctx context.Context, id string) error

	// Get returns a single product by its ID.
	Get(ctx context.Context, id string) (*model.Product, error)

	// List returns products using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ProductListResult, error)
}

// productService is a concrete implementation of ProductService.
type productService struct {
	store      storage.Storage
	products   repository.ProductRepository
	categories repository.CategoryRepository
	cache      cache.ProductCache
}

// NewProductService constructs a new ProductService. Pass cache.NewNoop()
// when no cache backend is configured.
func NewProductService(store storage.Storage, products repository.ProductRepository, categories repository.CategoryRepository, pc cache.ProductCache) ProductService {
	return &productService{store: store, products: products, categories: categories, cache: pc}
}

// assetPair is the result of one combined dual upload.
type assetPair struct {
	ImageURL     string
	ImageKey     string
	ThumbnailURL string
	ThumbnailKey string
}

func (s *productService) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	ve := newValidationError()
	if strings.TrimSpace(in.Name) == "" {
		ve.add("name", msgNameRequired)
	}
	if strings.TrimSpace(in.Title) == "" {
		ve.add("title", msgTitleRequired)
	}
	if strings.TrimSpace(in.Description) == "" {
		ve.add("description", msgDescriptionRequired)
	}
	validateImage(ve, in.Image, true)

	if strings.TrimSpace(in.CategoryID) == "" {
		ve.add("category_id", msgCategoryRequired)
	} else if err := s.checkCategory(ctx, in.CategoryID, ve); err != nil {
		return nil, err
	}

	if ve.any() {
		return nil, ve
	}

	derived, err := imageproc.Derive(in.Image.Data)
	if err != nil {
		return nil, fmt.Errorf("derive images: %w", err)
	}

	assets, err := s.uploadDerived(ctx, derived)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Product{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Title:          in.Title,
		Description:    in.Description,
		Image:          assets.ImageURL,
		ImageKey:       assets.ImageKey,
		ThumbnailImage: assets.ThumbnailURL,
		ThumbnailKey:   assets.ThumbnailKey,
		CategoryID:     in.CategoryID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	stored, err := s.products.Create(ctx, p)
	if err != nil {
		// Rollback: remove both freshly uploaded assets
		s.removeAssets(ctx, assets.ImageKey, assets.ThumbnailKey)
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if err := s.cache.SetProduct(ctx, stored); err != nil {
		logCacheError("set", stored.ID, err)
	}
	return stored, nil
}

func (s *productService) Update(ctx context.Context, id string, in UpdateProductInput) (*model.Product, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	ve := newValidationError()
	if in.CategoryID != nil {
		if strings.TrimSpace(*in.CategoryID) == "" {
			ve.add("category_id", msgCategoryRequired)
		} else if err := s.checkCategory(ctx, *in.CategoryID, ve); err != nil {
			return nil, err
		}
	}
	if in.Image != nil {
		validateImage(ve, in.Image, false)
	}
	if ve.any() {
		return nil, ve
	}

	oldImageKey, oldThumbKey := current.ImageKey, current.ThumbnailKey
	replaced := false

	if in.Image != nil {
		derived, err := imageproc.Derive(in.Image.Data)
		if err != nil {
			return nil, fmt.Errorf("derive images: %w", err)
		}
		assets, err := s.uploadDerived(ctx, derived)
		if err != nil {
			return nil, err
		}
		current.Image = assets.ImageURL
		current.ImageKey = assets.ImageKey
		current.ThumbnailImage = assets.ThumbnailURL
		current.ThumbnailKey = assets.ThumbnailKey
		replaced = true
	}

	if in.Name != nil {
		current.Name = *in.Name
	}
	if in.Title != nil {
		current.Title = *in.Title
	}
	if in.Description != nil {
		current.Description = *in.Description
	}
	if in.CategoryID != nil {
		current.CategoryID = *in.CategoryID
	}
	current.UpdatedAt = time.Now().UTC()

	stored, err := s.products.Update(ctx, current)
	if err != nil {
		if replaced {
			// Rollback the assets that will never be referenced
			s.removeAssets(ctx, current.ImageKey, current.ThumbnailKey)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// The record now points at the new assets; the old pair is unreachable
	// and removed best-effort.
	if replaced {
		s.removeAssets(ctx, oldImageKey, oldThumbKey)
	}

	if err := s.cache.SetProduct(ctx, stored); err != nil {
		logCacheError("set", stored.ID, err)
	}
	return stored, nil
}

// Delete removes both remote assets, then the record.
func (s *productService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.store.Delete(ctx, p.ImageKey); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if err := s.store.Delete(ctx, p.ThumbnailKey); err != nil {
		return fmt.Errorf("delete thumbnail: %w", err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.DeleteProduct(ctx, id); err != nil {
		logCacheError("delete", id, err)
	}
	return nil
}

// Get returns a product by ID, consulting the cache first.
func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	if p, err := s.cache.GetProduct(ctx, id); err != nil {
		logCacheError("get", id, err)
	} else if p != nil {
		return p, nil
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, p); err != nil {
		logCacheError("set", id, err)
	}
	return p, nil
}

// List returns paginated products without exposing repository types.
func (s *productService) List(ctx context.Context, limit, offset int) (*ProductListResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.products.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Items: res.Items, Total: res.Total}, nil
}

// checkCategory records a field error when the category id is malformed or
// unknown. Infrastructure failures are returned as-is.
func (s *productService) checkCategory(ctx context.Context, id string, ve *ValidationError) error {
	if _, err := uuid.Parse(id); err != nil {
		ve.add("category_id", msgCategoryInvalid)
		return nil
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ve.add("category_id", msgCategoryMissing)
			return nil
		}
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

func validateImage(ve *ValidationError, img *ImageUpload, required bool) {
	if img == nil {
		if required {
			ve.add("image", msgImageRequired)
		}
		return
	}
	if !allowedImageTypes[img.ContentType] {
		ve.add("image", msgImageFormat)
		return
	}
	if img.Size > MaxImageBytes {
		ve.add("image", msgImageTooLarge)
	}
}

// uploadDerived pushes both derived images concurrently. If either upload
// fails, any asset that did land is removed before the error is surfaced so
// the remote store never keeps half a pair.
func (s *productService) uploadDerived(ctx context.Context, d *imageproc.Derived) (assetPair, error) {
	base := uuid.New().String()
	fullKey := path.Join(productFolder, base+".jpg")
	thumbKey := path.Join(productFolder, base+"_thumb.jpg")

	var fullInfo, thumbInfo storage.ObjectInfo

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := s.store.Put(gctx, fullKey, bytes.NewReader(d.Full), storage.PutObjectOptions{
			Size:        int64(len(d.Full)),
			ContentType: "image/jpeg",
		})
		if err != nil {
			return fmt.Errorf("upload image: %w", err)
		}
		fullInfo = info
		return nil
	})
	g.Go(func() error {
		info, err := s.store.Put(gctx, thumbKey, bytes.NewReader(d.Thumb), storage.PutObjectOptions{
			Size:        int64(len(d.Thumb)),
			ContentType: "image/jpeg",
		})
		if err != nil {
			return fmt.Errorf("upload thumbnail: %w", err)
		}
		thumbInfo = info
		return nil
	})

	if err := g.Wait(); err != nil {
		cleanupCtx := context.WithoutCancel(ctx)
		if fullInfo.Key != "" {
			s.removeAssets(cleanupCtx, fullInfo.Key)
		}
		if thumbInfo.Key != "" {
			s.removeAssets(cleanupCtx, thumbInfo.Key)
		}
		return assetPair{}, err
	}

	return assetPair{
		ImageURL:     fullInfo.URL,
		ImageKey:     fullInfo.Key,
		ThumbnailURL: thumbInfo.URL,
		ThumbnailKey: thumbInfo.Key,
	}, nil
}

// removeAssets deletes keys best-effort, logging failures instead of
// propagating them.
func (s *productService) removeAssets(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			entry, _ := json.Marshal(map[string]any{
				"level": "error",
				"msg":   "asset_cleanup_failed",
				"key":   key,
				"error": err.Error(),
			})
			log.SetFlags(0)
			log.Println(string(entry))
		}
	}
}

func logCacheError(op, id string, err error) {
	entry, _ := json.Marshal(map[string]any{
		"level":      "warn",
		"msg":        "product_cache_error",
		"op":         op,
		"product_id": id,
		"error":      err.Error(),
	})
	log.SetFlags(0)
	log.Println(string(entry))
}
