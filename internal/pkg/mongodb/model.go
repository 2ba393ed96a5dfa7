package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Model 需要维护索引的集合模型实现此接口
type Model interface {
	// Collection 返回集合名称
	Collection() string

	// EnsureIndexes 创建并维护该集合的索引
	EnsureIndexes(ctx context.Context, db *mongo.Database) error
}

// EnsureAllIndexes 应用启动时为所有模型建索引的统一入口
func EnsureAllIndexes(ctx context.Context, db *mongo.Database, models ...Model) error {
	for _, model := range models {
		if err := model.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes 批量创建索引，空列表直接返回
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
