package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lullaby/internal/model/story"
)

// StoryRepository 故事仓库接口（供 service 层依赖）
type StoryRepository interface {
	Create(ctx context.Context, s *story.Story) error
	FindByID(ctx context.Context, id string) (*story.Story, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int64) ([]*story.Story, int64, error)
	ListPublic(ctx context.Context, limit int64) ([]*story.Story, error)
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
}

// StoryRepo 故事仓库
type StoryRepo struct {
	coll *mongo.Collection
}

// NewStoryRepo 创建故事仓库
func NewStoryRepo(db *mongo.Database) *StoryRepo {
	var s story.Story
	return &StoryRepo{coll: db.Collection(s.Collection())}
}

// Create 保存故事
func (r *StoryRepo) Create(ctx context.Context, s *story.Story) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

// FindByID 根据ID查询
func (r *StoryRepo) FindByID(ctx context.Context, id string) (*story.Story, error) {
	var s story.Story
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser 查询用户自己的故事（按创建时间倒序，分页）
func (r *StoryRepo) ListByUser(ctx context.Context, userID string, page, pageSize int64) ([]*story.Story, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(pageSize).
		SetSkip((page - 1) * pageSize)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var stories []*story.Story
	if err := cur.All(ctx, &stories); err != nil {
		return nil, 0, err
	}
	return stories, total, nil
}

// ListPublic 查询公开分享的故事（按创建时间倒序）
func (r *StoryRepo) ListPublic(ctx context.Context, limit int64) ([]*story.Story, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.coll.Find(ctx, bson.M{"is_public": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var stories []*story.Story
	if err := cur.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// Update 更新故事
func (r *StoryRepo) Update(ctx context.Context, id string, update bson.M) error {
	if setDoc, ok := update["$set"].(bson.M); ok {
		setDoc["updated_at"] = time.Now()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Delete 删除故事
func (r *StoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
