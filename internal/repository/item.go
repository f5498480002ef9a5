package repository

import (
	"context"
	"errors"

	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/gorm"
)

// ItemRepository 物品仓储接口
type ItemRepository interface {
	BaseRepository
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uint) (*models.Item, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Item, error)
	FindByRarity(ctx context.Context, rarity string) ([]models.Item, error)
	FindByType(ctx context.Context, itemType string, pagination *Pagination) ([]*models.Item, error)
	GetAll(ctx context.Context, pagination *Pagination) ([]*models.Item, error)
}

// itemRepo 物品仓储实现
type itemRepo struct {
	*BaseRepo
}

// NewItemRepository 创建物品仓储
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建物品
func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 更新物品
func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindByID 根据ID查找物品
func (r *itemRepo) FindByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("物品不存在")
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs 批量查找物品
func (r *itemRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Item
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// FindByRarity 查找指定稀有度的物品（掉落池）
func (r *itemRepo) FindByRarity(ctx context.Context, rarity string) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).Where("rarity = ?", rarity).Find(&items).Error
	return items, err
}

// FindByType 按类型查找物品（分页）
func (r *itemRepo) FindByType(ctx context.Context, itemType string, pagination *Pagination) ([]*models.Item, error) {
	var items []*models.Item
	query := r.db.WithContext(ctx).Model(&models.Item{}).Where("type = ?", itemType)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Scopes(Paginate(pagination)).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// GetAll 获取所有物品（分页）
func (r *itemRepo) GetAll(ctx context.Context, pagination *Pagination) ([]*models.Item, error) {
	var items []*models.Item
	query := r.db.WithContext(ctx).Model(&models.Item{})

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Scopes(Paginate(pagination)).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// WithTx 使用事务
func (r *itemRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &itemRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
