package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/gorm"
)

// CharacterRepository 角色仓储接口
type CharacterRepository interface {
	BaseRepository
	Create(ctx context.Context, character *models.Character) error
	Update(ctx context.Context, character *models.Character) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Character, error)
	FindByIDWithInventory(ctx context.Context, id uint) (*models.Character, error)
	FindByUserID(ctx context.Context, userID uint) ([]*models.Character, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	UpdateLastActive(ctx context.Context, id uint) error
	ReplaceInventory(ctx context.Context, characterID uint, slots []models.InventorySlot) error
}

// characterRepo 角色仓储实现
type characterRepo struct {
	*BaseRepo
}

// NewCharacterRepository 创建角色仓储
func NewCharacterRepository(db *gorm.DB) CharacterRepository {
	return &characterRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建角色
func (r *characterRepo) Create(ctx context.Context, character *models.Character) error {
	return r.db.WithContext(ctx).Create(character).Error
}

// Update 更新角色（全字段保存）
func (r *characterRepo) Update(ctx context.Context, character *models.Character) error {
	return r.db.WithContext(ctx).Save(character).Error
}

// Delete 删除角色（软删除）
func (r *characterRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Character{}, id).Error
}

// FindByID 根据ID查找角色
func (r *characterRepo) FindByID(ctx context.Context, id uint) (*models.Character, error) {
	var character models.Character
	err := r.db.WithContext(ctx).First(&character, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("角色不存在")
		}
		return nil, err
	}
	return &character, nil
}

// FindByIDWithInventory 根据ID查找角色并加载背包
func (r *characterRepo) FindByIDWithInventory(ctx context.Context, id uint) (*models.Character, error) {
	var character models.Character
	err := r.db.WithContext(ctx).
		Preload("Inventory", func(db *gorm.DB) *gorm.DB {
			return db.Order("slot_index ASC")
		}).
		Preload("Inventory.Item").
		First(&character, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("角色不存在")
		}
		return nil, err
	}
	return &character, nil
}

// FindByUserID 查找用户的所有角色
func (r *characterRepo) FindByUserID(ctx context.Context, userID uint) ([]*models.Character, error) {
	var characters []*models.Character
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&characters).Error
	return characters, err
}

// CountByUserID 统计用户的角色数量
func (r *characterRepo) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Character{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// UpdateLastActive 更新最后活跃时间
func (r *characterRepo) UpdateLastActive(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Character{}).
		Where("id = ?", id).
		Update("last_active_at", time.Now()).Error
}

// ReplaceInventory 全量替换角色背包（事务内先删后建）
func (r *characterRepo) ReplaceInventory(ctx context.Context, characterID uint, slots []models.InventorySlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", characterID).Delete(&models.InventorySlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		for i := range slots {
			slots[i].ID = 0
			slots[i].CharacterID = characterID
			slots[i].Item = nil
		}
		return tx.Create(&slots).Error
	})
}

// WithTx 使用事务
func (r *characterRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &characterRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
