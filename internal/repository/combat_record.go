package repository

import (
	"context"
	"errors"

	"github.com/wfunc/rpg-game/internal/models"
	"gorm.io/gorm"
)

// CombatStats 角色战斗统计
type CombatStats struct {
	TotalCombats    int64 `json:"total_combats"`
	Victories       int64 `json:"victories"`
	Defeats         int64 `json:"defeats"`
	Flights         int64 `json:"flights"`
	TotalExperience int64 `json:"total_experience"`
	TotalGold       int64 `json:"total_gold"`
}

// CombatRecordRepository 战斗记录仓储接口
type CombatRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.CombatRecord) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.CombatRecord, error)
	FindByCharacter(ctx context.Context, characterID uint, pagination *Pagination) ([]*models.CombatRecord, error)
	GetStats(ctx context.Context, characterID uint) (*CombatStats, error)
}

// combatRecordRepo 战斗记录仓储实现
type combatRecordRepo struct {
	*BaseRepo
}

// NewCombatRecordRepository 创建战斗记录仓储
func NewCombatRecordRepository(db *gorm.DB) CombatRecordRepository {
	return &combatRecordRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建战斗记录
func (r *combatRecordRepo) Create(ctx context.Context, record *models.CombatRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindBySessionID 根据会话ID查找战斗记录
func (r *combatRecordRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.CombatRecord, error) {
	var record models.CombatRecord
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("战斗记录不存在")
		}
		return nil, err
	}
	return &record, nil
}

// FindByCharacter 查找角色的战斗记录（分页，最新在前）
func (r *combatRecordRepo) FindByCharacter(ctx context.Context, characterID uint, pagination *Pagination) ([]*models.CombatRecord, error) {
	var records []*models.CombatRecord
	query := r.db.WithContext(ctx).
		Model(&models.CombatRecord{}).
		Where("character_id = ?", characterID)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Scopes(Paginate(pagination)).
		Order("ended_at DESC").
		Find(&records).Error
	return records, err
}

// GetStats 统计角色的战斗数据
func (r *combatRecordRepo) GetStats(ctx context.Context, characterID uint) (*CombatStats, error) {
	stats := &CombatStats{}
	base := r.db.WithContext(ctx).
		Model(&models.CombatRecord{}).
		Where("character_id = ?", characterID)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalCombats).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("result = ?", models.CombatResultVictory).Count(&stats.Victories).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("result = ?", models.CombatResultDefeat).Count(&stats.Defeats).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("result = ?", models.CombatResultFled).Count(&stats.Flights).Error; err != nil {
		return nil, err
	}

	row := r.db.WithContext(ctx).
		Model(&models.CombatRecord{}).
		Where("character_id = ?", characterID).
		Select("COALESCE(SUM(experience_gained), 0), COALESCE(SUM(gold_gained), 0)").
		Row()
	if err := row.Scan(&stats.TotalExperience, &stats.TotalGold); err != nil {
		return nil, err
	}

	return stats, nil
}

// WithTx 使用事务
func (r *combatRecordRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &combatRecordRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
