package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Story 故事实体（主表）
// content 保存序列化后的完整故事文档（标题+分段+插图+音频），
// 播放端只消费文档本身，不关心行级字段
type Story struct {
	ID string `bson:"_id,omitempty" json:"id"` // 故事ID（UUID）

	UserID string `bson:"user_id" json:"user_id"` // 所属用户

	Title    string `bson:"title" json:"title"`         // 故事标题（冗余，便于列表查询）
	Content  string `bson:"content" json:"content"`     // 序列化的故事文档（JSON）
	IsPublic bool   `bson:"is_public" json:"is_public"` // 是否公开分享

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (s *Story) Collection() string { return "stories" }

// EnsureIndexes 创建和维护索引
func (s *Story) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "is_public", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_public_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
