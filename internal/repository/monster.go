package repository

import (
	"context"
	"errors"

	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/gorm"
)

// MonsterRepository 怪物仓储接口
type MonsterRepository interface {
	BaseRepository
	Create(ctx context.Context, monster *models.Monster) error
	Update(ctx context.Context, monster *models.Monster) error
	FindByID(ctx context.Context, id uint) (*models.Monster, error)
	FindByZone(ctx context.Context, zoneID uint) ([]*models.Monster, error)
	FindByLevelRange(ctx context.Context, minLevel, maxLevel int) ([]*models.Monster, error)
	GetAll(ctx context.Context, pagination *Pagination) ([]*models.Monster, error)
}

// monsterRepo 怪物仓储实现
type monsterRepo struct {
	*BaseRepo
}

// NewMonsterRepository 创建怪物仓储
func NewMonsterRepository(db *gorm.DB) MonsterRepository {
	return &monsterRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建怪物模板
func (r *monsterRepo) Create(ctx context.Context, monster *models.Monster) error {
	return r.db.WithContext(ctx).Create(monster).Error
}

// Update 更新怪物模板
func (r *monsterRepo) Update(ctx context.Context, monster *models.Monster) error {
	return r.db.WithContext(ctx).Save(monster).Error
}

// FindByID 根据ID查找怪物（加载技能和掉落表）
func (r *monsterRepo) FindByID(ctx context.Context, id uint) (*models.Monster, error) {
	var monster models.Monster
	err := r.db.WithContext(ctx).
		Preload("Abilities").
		Preload("LootTable").
		Preload("LootTable.Item").
		First(&monster, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("怪物不存在")
		}
		return nil, err
	}
	return &monster, nil
}

// FindByZone 查找区域内的活跃怪物
func (r *monsterRepo) FindByZone(ctx context.Context, zoneID uint) ([]*models.Monster, error) {
	var monsters []*models.Monster
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND is_active = ?", zoneID, true).
		Order("level ASC").
		Find(&monsters).Error
	return monsters, err
}

// FindByLevelRange 按等级区间查找活跃怪物
func (r *monsterRepo) FindByLevelRange(ctx context.Context, minLevel, maxLevel int) ([]*models.Monster, error) {
	var monsters []*models.Monster
	err := r.db.WithContext(ctx).
		Where("level BETWEEN ? AND ? AND is_active = ?", minLevel, maxLevel, true).
		Order("level ASC").
		Find(&monsters).Error
	return monsters, err
}

// GetAll 获取所有怪物（分页）
func (r *monsterRepo) GetAll(ctx context.Context, pagination *Pagination) ([]*models.Monster, error) {
	var monsters []*models.Monster
	query := r.db.WithContext(ctx).Model(&models.Monster{})

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Scopes(Paginate(pagination)).
		Order("level ASC").
		Find(&monsters).Error
	return monsters, err
}

// WithTx 使用事务
func (r *monsterRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &monsterRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
