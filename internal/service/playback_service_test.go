package service

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"lullaby/internal/model/story"
	"lullaby/internal/playback"
)

// fakeStoryRepo 内存版故事仓库，避免测试依赖真实MongoDB
type fakeStoryRepo struct {
	stories map[string]*story.Story
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[string]*story.Story)}
}

func (r *fakeStoryRepo) Create(ctx context.Context, s *story.Story) error {
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	r.stories[s.ID] = &cp
	return nil
}

func (r *fakeStoryRepo) FindByID(ctx context.Context, id string) (*story.Story, error) {
	s, ok := r.stories[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStoryRepo) ListByUser(ctx context.Context, userID string, page, pageSize int64) ([]*story.Story, int64, error) {
	var result []*story.Story
	for _, s := range r.stories {
		if s.UserID == userID {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeStoryRepo) ListPublic(ctx context.Context, limit int64) ([]*story.Story, error) {
	var result []*story.Story
	for _, s := range r.stories {
		if s.IsPublic {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeStoryRepo) Update(ctx context.Context, id string, update bson.M) error {
	s, ok := r.stories[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if setDoc, ok := update["$set"].(bson.M); ok {
		if title, ok := setDoc["title"].(string); ok {
			s.Title = title
		}
		if content, ok := setDoc["content"].(string); ok {
			s.Content = content
		}
		if pub, ok := setDoc["is_public"].(bool); ok {
			s.IsPublic = pub
		}
	}
	return nil
}

func (r *fakeStoryRepo) Delete(ctx context.Context, id string) error {
	delete(r.stories, id)
	return nil
}

func sessionTestDocument(n int) *playback.Document {
	doc := &playback.Document{Title: "测试故事"}
	for i := 0; i < n; i++ {
		doc.Segments = append(doc.Segments, playback.Segment{
			Text: "第n段",
		})
	}
	return doc
}

func TestPlaybackServiceSessions(t *testing.T) {
	Convey("播放会话服务", t, func() {
		repo := newFakeStoryRepo()
		storySvc := NewStoryService(repo, nil, nil)
		svc := NewPlaybackService(storySvc, time.Hour)
		defer svc.Close()

		Convey("创建会话后从第一段自动播放", func() {
			state, err := svc.CreateSession("user-1", sessionTestDocument(3))
			So(err, ShouldBeNil)
			So(state.SessionID, ShouldNotBeEmpty)
			So(state.Position, ShouldEqual, 0)
			So(state.Playing, ShouldBeTrue)
			So(state.Terminal, ShouldBeFalse)
			So(state.SegmentCount, ShouldEqual, 3)
			So(state.Title, ShouldEqual, "测试故事")
		})

		Convey("无效文档整体拒绝", func() {
			state, err := svc.CreateSession("user-1", &playback.Document{Title: "空"})
			So(err, ShouldNotBeNil)
			So(state, ShouldBeNil)
		})

		Convey("非所有者无法访问会话", func() {
			state, _ := svc.CreateSession("user-1", sessionTestDocument(2))

			_, err := svc.GetState(state.SessionID, "user-2")
			So(err, ShouldEqual, ErrSessionForbidden)

			_, err = svc.Advance(state.SessionID, "user-2")
			So(err, ShouldEqual, ErrSessionForbidden)
		})

		Convey("不存在的会话返回未找到", func() {
			_, err := svc.GetState("no-such-session", "user-1")
			So(err, ShouldEqual, ErrSessionNotFound)
		})

		Convey("前进后退切换都返回最新快照", func() {
			state, _ := svc.CreateSession("user-1", sessionTestDocument(3))
			sid := state.SessionID

			state, err := svc.Advance(sid, "user-1")
			So(err, ShouldBeNil)
			So(state.Position, ShouldEqual, 1)

			state, err = svc.Retreat(sid, "user-1")
			So(err, ShouldBeNil)
			So(state.Position, ShouldEqual, 0)

			state, err = svc.Toggle(sid, "user-1")
			So(err, ShouldBeNil)
			So(state.Playing, ShouldBeFalse)
		})

		Convey("未到结尾时拒绝保存", func() {
			state, _ := svc.CreateSession("user-1", sessionTestDocument(3))

			_, err := svc.Save(context.Background(), state.SessionID, "user-1")
			So(err, ShouldEqual, playback.ErrNotTerminal)
		})

		Convey("在结尾保存后故事落库", func() {
			state, _ := svc.CreateSession("user-1", sessionTestDocument(1))
			So(state.Terminal, ShouldBeTrue)

			storyID, err := svc.Save(context.Background(), state.SessionID, "user-1")
			So(err, ShouldBeNil)
			So(storyID, ShouldNotBeEmpty)

			st, err := repo.FindByID(context.Background(), storyID)
			So(err, ShouldBeNil)
			So(st.UserID, ShouldEqual, "user-1")
			So(st.IsPublic, ShouldBeFalse)
		})

		Convey("分享后故事公开且再次分享原地更新", func() {
			state, _ := svc.CreateSession("user-1", sessionTestDocument(1))

			storyID, err := svc.Share(context.Background(), state.SessionID, "user-1")
			So(err, ShouldBeNil)

			st, _ := repo.FindByID(context.Background(), storyID)
			So(st.IsPublic, ShouldBeTrue)

			// 同一会话再次分享不会新建记录
			storyID2, err := svc.Share(context.Background(), state.SessionID, "user-1")
			So(err, ShouldBeNil)
			So(storyID2, ShouldEqual, storyID)
			So(len(repo.stories), ShouldEqual, 1)
		})

		Convey("关闭会话后无法再访问", func() {
			state, _ := svc.CreateSession("user-1", sessionTestDocument(2))

			err := svc.CloseSession(state.SessionID, "user-1")
			So(err, ShouldBeNil)

			_, err = svc.GetState(state.SessionID, "user-1")
			So(err, ShouldEqual, ErrSessionNotFound)
		})

		Convey("过期会话被回收", func() {
			short := NewPlaybackService(storySvc, time.Hour)
			defer short.Close()

			state, _ := short.CreateSession("user-1", sessionTestDocument(2))

			// 手动触发一次远未来的清扫
			short.sweep(time.Now().Add(2 * time.Hour))

			_, err := short.GetState(state.SessionID, "user-1")
			So(err, ShouldEqual, ErrSessionNotFound)
		})
	})
}
