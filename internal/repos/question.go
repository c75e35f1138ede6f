package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Question, error)
	// GetRandom samples up to n questions uniformly from the whole bank.
	GetRandom(ctx context.Context, tx *gorm.DB, n int) ([]*types.Question, error)
	// GetRandomBySkills samples up to n questions whose skill tags intersect
	// the given set.
	GetRandomBySkills(ctx context.Context, tx *gorm.DB, skills []string, n int) ([]*types.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (qr *questionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	if len(questions) == 0 {
		return []*types.Question{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&questions).Error; err != nil {
		return nil, err
	}

	for _, q := range questions {
		if len(q.Skills) == 0 {
			continue
		}
		rows := make([]types.QuestionSkill, 0, len(q.Skills))
		for _, s := range q.Skills {
			rows = append(rows, types.QuestionSkill{QuestionID: q.ID, Skill: s})
		}
		if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
			return nil, err
		}
	}

	return questions, nil
}

func (qr *questionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	var results []*types.Question
	if len(questionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if err := qr.loadSkills(ctx, transaction, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (qr *questionRepo) GetRandom(ctx context.Context, tx *gorm.DB, n int) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	var results []*types.Question
	if n <= 0 {
		return results, nil
	}

	// random() exists in both postgres and the sqlite used by tests.
	if err := transaction.WithContext(ctx).
		Order("random()").
		Limit(n).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if err := qr.loadSkills(ctx, transaction, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (qr *questionRepo) GetRandomBySkills(ctx context.Context, tx *gorm.DB, skills []string, n int) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	var results []*types.Question
	if n <= 0 || len(skills) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN (?)", transaction.
			Model(&types.QuestionSkill{}).
			Select("question_id").
			Where("skill IN ?", skills)).
		Order("random()").
		Limit(n).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if err := qr.loadSkills(ctx, transaction, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (qr *questionRepo) loadSkills(ctx context.Context, tx *gorm.DB, questions []*types.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	var rows []types.QuestionSkill
	if err := tx.WithContext(ctx).
		Where("question_id IN ?", ids).
		Find(&rows).Error; err != nil {
		return err
	}
	byQuestion := make(map[uuid.UUID][]string, len(questions))
	for _, row := range rows {
		byQuestion[row.QuestionID] = append(byQuestion[row.QuestionID], row.Skill)
	}
	for _, q := range questions {
		q.Skills = byQuestion[q.ID]
	}
	return nil
}
