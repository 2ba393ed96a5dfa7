package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lullaby/internal/model/story"
)

// VoiceSampleRepository 声音样本仓库接口
type VoiceSampleRepository interface {
	Create(ctx context.Context, v *story.VoiceSample) error
	FindByVoiceID(ctx context.Context, voiceID string) (*story.VoiceSample, error)
	ListByUser(ctx context.Context, userID string) ([]*story.VoiceSample, error)
	Delete(ctx context.Context, voiceID string) error
}

// VoiceSampleRepo 声音样本仓库
type VoiceSampleRepo struct {
	coll *mongo.Collection
}

// NewVoiceSampleRepo 创建声音样本仓库
func NewVoiceSampleRepo(db *mongo.Database) *VoiceSampleRepo {
	var v story.VoiceSample
	return &VoiceSampleRepo{coll: db.Collection(v.Collection())}
}

// Create 保存声音样本
func (r *VoiceSampleRepo) Create(ctx context.Context, v *story.VoiceSample) error {
	v.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, v)
	return err
}

// FindByVoiceID 根据voice_id查询
func (r *VoiceSampleRepo) FindByVoiceID(ctx context.Context, voiceID string) (*story.VoiceSample, error) {
	var v story.VoiceSample
	if err := r.coll.FindOne(ctx, bson.M{"voice_id": voiceID}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByUser 查询用户可用的声音样本（按创建时间倒序）
// 结果包含内置声音（user_id 为空）和用户自己克隆的声音
func (r *VoiceSampleRepo) ListByUser(ctx context.Context, userID string) ([]*story.VoiceSample, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	filter := bson.M{"user_id": bson.M{"$in": bson.A{userID, "", nil}}}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var samples []*story.VoiceSample
	if err := cur.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// Delete 删除声音样本
func (r *VoiceSampleRepo) Delete(ctx context.Context, voiceID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"voice_id": voiceID})
	return err
}
