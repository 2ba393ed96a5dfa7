package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VoiceSample 旁白声音样本
// voice_id 来自上游声音克隆服务，sample_path 指向存储中的试听音频
type VoiceSample struct {
	VoiceID     string    `bson:"voice_id" json:"voice_id"`                   // 上游声音ID
	VoiceName   string    `bson:"voice_name" json:"voice_name"`               // 展示名称
	Description string    `bson:"description,omitempty" json:"description"`   // 描述（可选）
	SamplePath  string    `bson:"sample_path" json:"sample_path"`             // 存储中的样本路径
	UserID      string    `bson:"user_id,omitempty" json:"user_id,omitempty"` // 上传用户（内置声音为空）
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (v *VoiceSample) Collection() string { return "voice_samples" }

// EnsureIndexes 创建和维护索引
func (v *VoiceSample) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(v.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "voice_id", Value: 1}},
			Options: options.Index().SetName("idx_voice_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
