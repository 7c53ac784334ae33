package service

import (
	"sort"

	"github.com/dujiao-next/marketcore/internal/metrics"
	"github.com/dujiao-next/marketcore/internal/models"
	"github.com/dujiao-next/marketcore/internal/repository"

	"gorm.io/gorm"
)

// StockLine 库存变更行
type StockLine struct {
	ProductID uint
	Quantity  int
}

// InventoryService 库存台账：条件扣减、回补与预检
type InventoryService struct {
	productRepo repository.ProductRepository
}

// NewInventoryService 创建库存服务
func NewInventoryService(productRepo repository.ProductRepository) *InventoryService {
	return &InventoryService{productRepo: productRepo}
}

// ReserveAndDeduct 在调用方事务内条件扣减单个商品库存
func (s *InventoryService) ReserveAndDeduct(tx *gorm.DB, productID uint, quantity int) error {
	if productID == 0 || quantity <= 0 {
		return ErrInvalidOrderItem
	}
	repo := s.productRepo.WithTx(tx)
	affected, err := repo.DeductStock(productID, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return &InsufficientStockError{Items: []StockShortage{s.shortageOf(repo, productID, quantity)}}
	}
	return nil
}

// ReserveItems 全部扣减成功才算成功
// 任一行不足时返回列出所有不足行的错误，调用方回滚事务
func (s *InventoryService) ReserveItems(tx *gorm.DB, lines []StockLine) error {
	merged, err := mergeStockLines(lines)
	if err != nil {
		return err
	}
	repo := s.productRepo.WithTx(tx)
	var shortages []StockShortage
	for _, line := range merged {
		affected, err := repo.DeductStock(line.ProductID, line.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			shortages = append(shortages, s.shortageOf(repo, line.ProductID, line.Quantity))
		}
	}
	if len(shortages) > 0 {
		return &InsufficientStockError{Items: shortages}
	}
	return nil
}

// Restore 回补单个商品库存
func (s *InventoryService) Restore(tx *gorm.DB, productID uint, quantity int) error {
	if productID == 0 || quantity <= 0 {
		return ErrInvalidOrderItem
	}
	if _, err := s.productRepo.WithTx(tx).RestoreStock(productID, quantity); err != nil {
		return err
	}
	metrics.StockRestored.Add(float64(quantity))
	return nil
}

// RestoreItems 回补订单全部商品库存
func (s *InventoryService) RestoreItems(tx *gorm.DB, lines []StockLine) error {
	merged, err := mergeStockLines(lines)
	if err != nil {
		return err
	}
	for _, line := range merged {
		if err := s.Restore(tx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// CheckBatch 只读预检，返回所有库存不足的商品
func (s *InventoryService) CheckBatch(lines []StockLine) ([]StockShortage, error) {
	merged, err := mergeStockLines(lines)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(merged))
	for _, line := range merged {
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	shortages := make([]StockShortage, 0)
	for _, line := range merged {
		product, ok := byID[line.ProductID]
		if !ok {
			shortages = append(shortages, StockShortage{ProductID: line.ProductID, Requested: line.Quantity})
			continue
		}
		if product.StockQuantity < line.Quantity {
			shortages = append(shortages, StockShortage{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.StockQuantity,
			})
		}
	}
	return shortages, nil
}

func (s *InventoryService) shortageOf(repo repository.ProductRepository, productID uint, quantity int) StockShortage {
	shortage := StockShortage{ProductID: productID, Requested: quantity}
	product, err := repo.GetByID(productID)
	if err == nil && product != nil {
		shortage.ProductName = product.Name
		shortage.Available = product.StockQuantity
	}
	return shortage
}

// mergeStockLines 合并同一商品的多行并按商品 ID 升序排列
// 所有扣减与回补按同一顺序加行锁
func mergeStockLines(lines []StockLine) ([]StockLine, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidOrderItem
	}
	merged := make([]StockLine, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, line := range lines {
		if line.ProductID == 0 || line.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		if idx, ok := index[line.ProductID]; ok {
			merged[idx].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID < merged[j].ProductID
	})
	return merged, nil
}
