package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"warungpos/internal/apperror"
	"warungpos/internal/dto"
	"warungpos/internal/model"
	"warungpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// StockService is the movement ledger surface: every quantity change goes
// through ApplyMovement, and CurrentQuantity is the read-only projection.
type StockService interface {
	ApplyMovement(ctx context.Context, companyID, actorID uuid.UUID, req dto.ApplyMovementRequest) (*dto.StockResponse, error)
	CurrentQuantity(ctx context.Context, companyID, productID, warehouseID uuid.UUID) (*dto.StockResponse, error)
	ListMovements(ctx context.Context, companyID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type stockService struct {
	repo     repository.StockRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewStockService wires the ledger repository and an optional Redis client.
// rdb may be nil (unit tests, cacheless deployments); caching is best-effort
// and never substitutes for the projection read.
func NewStockService(repo repository.StockRepository, rdb *redis.Client, cacheTTL time.Duration) StockService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &stockService{repo: repo, rdb: rdb, cacheTTL: cacheTTL}
}

// ── ApplyMovement ─────────────────────────────────────────────────────────────
// Validates the movement, computes the signed delta, and delegates the atomic
// append+update to the repository. Validation failures and insufficient stock
// leave persisted state untouched.

func (s *stockService) ApplyMovement(ctx context.Context, companyID, actorID uuid.UUID, req dto.ApplyMovementRequest) (*dto.StockResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.Validation("invalid product_id: %s", req.ProductID)
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return nil, apperror.Validation("invalid warehouse_id: %s", req.WarehouseID)
	}

	var delta int64
	switch req.Type {
	case model.MovementIn:
		if req.Quantity <= 0 {
			return nil, apperror.Validation("quantity must be positive for %s movements", req.Type)
		}
		delta = req.Quantity
	case model.MovementOut:
		if req.Quantity <= 0 {
			return nil, apperror.Validation("quantity must be positive for %s movements", req.Type)
		}
		delta = -req.Quantity
	case model.MovementAdjustment:
		if req.Quantity == 0 {
			return nil, apperror.Validation("adjustment quantity must be non-zero")
		}
		delta = req.Quantity
	default:
		return nil, apperror.Validation("unknown movement type %q", req.Type)
	}

	mov := &model.StockMovement{
		CompanyID:   companyID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Reference:   req.Reference,
		CreatedBy:   actorID,
	}

	rec, err := s.repo.ApplyMovement(ctx, mov, delta)
	if err != nil {
		if apperror.IsKind(err, apperror.KindInsufficientStock) {
			return nil, err
		}
		return nil, apperror.Internal(err, "failed to apply stock movement")
	}

	s.invalidateCache(ctx, companyID, productID, warehouseID)
	return stockToResponse(rec), nil
}

// ── CurrentQuantity ───────────────────────────────────────────────────────────
// Read-through cache over the projection. A key with no record yet reads as
// quantity 0 — the empty signed sum — without creating anything.

func (s *stockService) CurrentQuantity(ctx context.Context, companyID, productID, warehouseID uuid.UUID) (*dto.StockResponse, error) {
	key := stockCacheKey(companyID, productID, warehouseID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			if qty, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return &dto.StockResponse{
					ProductID:   productID.String(),
					WarehouseID: warehouseID.String(),
					Quantity:    qty,
				}, nil
			}
		}
	}

	rec, err := s.repo.FindRecord(ctx, companyID, productID, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.StockResponse{
				ProductID:   productID.String(),
				WarehouseID: warehouseID.String(),
				Quantity:    0,
			}, nil
		}
		return nil, apperror.Internal(err, "failed to read stock record")
	}

	if s.rdb != nil {
		_ = s.rdb.Set(ctx, key, strconv.FormatInt(rec.Quantity, 10), s.cacheTTL).Err()
	}
	return stockToResponse(rec), nil
}

func (s *stockService) ListMovements(ctx context.Context, companyID uuid.UUID, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	repoFilter := repository.StockFilter{
		Type:  filter.Type,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, apperror.Validation("invalid product_id: %s", filter.ProductID)
		}
		repoFilter.ProductID = &pid
	}
	if filter.WarehouseID != "" {
		wid, err := uuid.Parse(filter.WarehouseID)
		if err != nil {
			return nil, apperror.Validation("invalid warehouse_id: %s", filter.WarehouseID)
		}
		repoFilter.WarehouseID = &wid
	}

	movements, total, err := s.repo.ListMovements(ctx, companyID, repoFilter)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list movements")
	}

	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, dto.MovementResponse{
			ID:             m.ID.String(),
			ProductID:      m.ProductID.String(),
			WarehouseID:    m.WarehouseID.String(),
			Type:           m.Type,
			Quantity:       m.Quantity,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			Reference:      m.Reference,
			CreatedBy:      m.CreatedBy.String(),
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		})
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return &dto.MovementListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func stockCacheKey(companyID, productID, warehouseID uuid.UUID) string {
	return fmt.Sprintf("stock:%s:%s:%s", companyID, productID, warehouseID)
}

func (s *stockService) invalidateCache(ctx context.Context, companyID, productID, warehouseID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, stockCacheKey(companyID, productID, warehouseID)).Err()
}

func stockToResponse(rec *model.StockRecord) *dto.StockResponse {
	return &dto.StockResponse{
		ProductID:   rec.ProductID.String(),
		WarehouseID: rec.WarehouseID.String(),
		Quantity:    rec.Quantity,
		LastUpdated: rec.LastUpdated.Format(time.RFC3339),
	}
}
