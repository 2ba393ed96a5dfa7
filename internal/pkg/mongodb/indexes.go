package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lullaby/internal/model/story"
)

// EnsureIndexes 创建所有模型的索引
// 这是一个统一的入口，用于在应用启动时创建所有模型的索引
// 如果模型实现了 Model 接口，会自动调用其 EnsureIndexes 方法
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	// 使用 Model 接口的模型
	models := []Model{
		&story.Story{},
		&story.VoiceSample{},
	}

	if err := EnsureAllIndexes(ctx, db, models...); err != nil {
		return err
	}

	// 认证相关集合的索引（实体未实现 Model 接口，这里手动创建）

	// users 集合索引
	userColl := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "role", Value: 1}, bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_role_status"),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}

	if err := CreateIndexes(ctx, userColl, userIndexes); err != nil {
		return err
	}

	// refresh_tokens 集合索引
	refreshTokenColl := db.Collection("refresh_tokens")
	refreshTokenIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_id"),
		},
		{
			Keys:    bson.D{bson.E{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_token").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_expires_at").SetExpireAfterSeconds(0), // TTL索引，自动删除过期token
		},
	}

	return CreateIndexes(ctx, refreshTokenColl, refreshTokenIndexes)
}
