package repository

import (
	"context"
	"errors"

	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/gorm"
)

// SkillRepository 技能仓储接口
type SkillRepository interface {
	BaseRepository
	Create(ctx context.Context, skill *models.Skill) error
	Update(ctx context.Context, skill *models.Skill) error
	FindByID(ctx context.Context, id uint) (*models.Skill, error)
	FindForClass(ctx context.Context, class string, level int) ([]*models.Skill, error)
	GetAll(ctx context.Context, pagination *Pagination) ([]*models.Skill, error)
}

// skillRepo 技能仓储实现
type skillRepo struct {
	*BaseRepo
}

// NewSkillRepository 创建技能仓储
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建技能
func (r *skillRepo) Create(ctx context.Context, skill *models.Skill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

// Update 更新技能
func (r *skillRepo) Update(ctx context.Context, skill *models.Skill) error {
	return r.db.WithContext(ctx).Save(skill).Error
}

// FindByID 根据ID查找技能（加载附加效果）
func (r *skillRepo) FindByID(ctx context.Context, id uint) (*models.Skill, error) {
	var skill models.Skill
	err := r.db.WithContext(ctx).
		Preload("Effects").
		First(&skill, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("技能不存在")
		}
		return nil, err
	}
	return &skill, nil
}

// FindForClass 查找职业在指定等级下可用的技能
func (r *skillRepo) FindForClass(ctx context.Context, class string, level int) ([]*models.Skill, error) {
	var skills []*models.Skill
	err := r.db.WithContext(ctx).
		Where("(required_class = ? OR required_class = ?) AND required_level <= ? AND is_active = ?",
			class, models.ClassAny, level, true).
		Order("required_level ASC").
		Find(&skills).Error
	return skills, err
}

// GetAll 获取所有技能（分页）
func (r *skillRepo) GetAll(ctx context.Context, pagination *Pagination) ([]*models.Skill, error) {
	var skills []*models.Skill
	query := r.db.WithContext(ctx).Model(&models.Skill{})

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Scopes(Paginate(pagination)).
		Order("required_level ASC").
		Find(&skills).Error
	return skills, err
}

// WithTx 使用事务
func (r *skillRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &skillRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
