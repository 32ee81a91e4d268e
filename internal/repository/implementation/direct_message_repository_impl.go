package implementation

import (
	"context"

	"unimind-be/internal/entity"
	"unimind-be/internal/mapper"
	"unimind-be/internal/model"
	"unimind-be/internal/repository/contract"
	"unimind-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DirectMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DirectMessageMapper
}

func NewDirectMessageRepository(db *gorm.DB) contract.DirectMessageRepository {
	return &DirectMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewDirectMessageMapper(),
	}
}

func (r *DirectMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DirectMessageRepositoryImpl) Create(ctx context.Context, message *entity.DirectMessage) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(m)
	return nil
}

func (r *DirectMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DirectMessage, error) {
	var models []*model.DirectMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DirectMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

type ConnectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DirectMessageMapper
}

func NewConnectionRepository(db *gorm.DB) contract.ConnectionRepository {
	return &ConnectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDirectMessageMapper(),
	}
}

func (r *ConnectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Connection, error) {
	var models []*model.Connection
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Connection, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ConnectionToEntity(m)
	}
	return entities, nil
}
