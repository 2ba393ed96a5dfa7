package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"

	"lullaby/internal/config"
	"lullaby/internal/model/story"
	"lullaby/internal/pkg/elevenlabs"
	"lullaby/internal/pkg/storage"
)

// fakeVoiceRepo 内存声音样本仓库
type fakeVoiceRepo struct {
	voices map[string]*story.VoiceSample
}

func newFakeVoiceRepo() *fakeVoiceRepo {
	return &fakeVoiceRepo{voices: make(map[string]*story.VoiceSample)}
}

func (r *fakeVoiceRepo) Create(ctx context.Context, v *story.VoiceSample) error {
	v.CreatedAt = time.Now()
	r.voices[v.VoiceID] = v
	return nil
}

func (r *fakeVoiceRepo) FindByVoiceID(ctx context.Context, voiceID string) (*story.VoiceSample, error) {
	v, ok := r.voices[voiceID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return v, nil
}

func (r *fakeVoiceRepo) ListByUser(ctx context.Context, userID string) ([]*story.VoiceSample, error) {
	// 与 Mongo 仓库的过滤语义一致：内置声音（user_id 为空）对所有用户可见
	var out []*story.VoiceSample
	for _, v := range r.voices {
		if v.UserID == userID || v.UserID == "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVoiceRepo) Delete(ctx context.Context, voiceID string) error {
	delete(r.voices, voiceID)
	return nil
}

// fakeVoiceStorage 记录上传的存储桩
type fakeVoiceStorage struct {
	uploads map[string][]byte
}

func newFakeVoiceStorage() *fakeVoiceStorage {
	return &fakeVoiceStorage{uploads: make(map[string][]byte)}
}

func (s *fakeVoiceStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.uploads[key] = b
	return "https://cdn.example.com/" + key, nil
}

func (s *fakeVoiceStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.uploads[key])), nil
}

func (s *fakeVoiceStorage) GetPresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	return "https://cdn.example.com/put/" + key, nil
}

func (s *fakeVoiceStorage) GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return "https://cdn.example.com/signed/" + key, nil
}

func (s *fakeVoiceStorage) Delete(ctx context.Context, key string) error {
	delete(s.uploads, key)
	return nil
}

func (s *fakeVoiceStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.uploads[key]
	return ok, nil
}

func (s *fakeVoiceStorage) GetFileInfo(ctx context.Context, key string) (*storage.FileInfo, error) {
	return &storage.FileInfo{Key: key, Size: int64(len(s.uploads[key]))}, nil
}

func (s *fakeVoiceStorage) GetStorageType() string { return "fake" }

// newVoiceTestClient 指向测试服务器的克隆客户端
func newVoiceTestClient(t *testing.T, handler http.Handler) *elevenlabs.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := elevenlabs.NewClient(&config.VoiceConfig{
		APIURL: srv.URL,
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestVoiceServiceClone(t *testing.T) {
	Convey("Clone 克隆声音", t, func() {
		client := newVoiceTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/voices/add") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"voice_id": "cloned-42"})
		}))
		repo := newFakeVoiceRepo()
		store := newFakeVoiceStorage()
		svc := NewVoiceService(repo, client, store)
		ctx := context.Background()

		Convey("成功：拿到上游voice_id，样本留档，元数据落库", func() {
			res, err := svc.Clone(ctx, "user-1", "我的声音", "温柔", "sample.mp3", strings.NewReader("audio-bytes"))
			So(err, ShouldBeNil)
			So(res.VoiceID, ShouldEqual, "cloned-42")

			v, err := repo.FindByVoiceID(ctx, "cloned-42")
			So(err, ShouldBeNil)
			So(v.UserID, ShouldEqual, "user-1")
			So(v.SamplePath, ShouldEqual, "voice-samples/user-1/sample.mp3")
			So(store.uploads[v.SamplePath], ShouldResemble, []byte("audio-bytes"))
		})

		Convey("空样本被拒绝", func() {
			_, err := svc.Clone(ctx, "user-1", "我的声音", "", "sample.mp3", strings.NewReader(""))
			So(err, ShouldNotBeNil)
		})

		Convey("克隆服务未配置：返回 ErrVoiceUnavailable", func() {
			svc := NewVoiceService(repo, nil, store)
			_, err := svc.Clone(ctx, "user-1", "我的声音", "", "sample.mp3", strings.NewReader("x"))
			So(err, ShouldEqual, ErrVoiceUnavailable)
		})
	})
}

func TestVoiceServiceBuiltins(t *testing.T) {
	Convey("内置声音对所有用户可用", t, func() {
		repo := newFakeVoiceRepo()
		store := newFakeVoiceStorage()
		svc := NewVoiceService(repo, nil, store)
		ctx := context.Background()

		// 预置一个内置声音（user_id 为空）和一个用户克隆的声音
		So(repo.Create(ctx, &story.VoiceSample{
			VoiceID:    "builtin-charlie",
			VoiceName:  "Charlie",
			SamplePath: "voice-samples/default/builtin-charlie.mp3",
		}), ShouldBeNil)
		So(repo.Create(ctx, &story.VoiceSample{
			VoiceID:   "cloned-1",
			VoiceName: "mine",
			UserID:    "user-1",
		}), ShouldBeNil)

		Convey("新用户未克隆任何声音也能列出内置声音", func() {
			voices, err := svc.List(ctx, "fresh-user")
			So(err, ShouldBeNil)
			So(len(voices), ShouldEqual, 1)
			So(voices[0].VoiceID, ShouldEqual, "builtin-charlie")
		})

		Convey("用户列表包含内置声音和自己的声音", func() {
			voices, err := svc.List(ctx, "user-1")
			So(err, ShouldBeNil)
			So(len(voices), ShouldEqual, 2)
		})

		Convey("内置声音可通过voice_id解析（生成旁白用）", func() {
			v, err := svc.Get(ctx, "builtin-charlie")
			So(err, ShouldBeNil)
			So(v.VoiceName, ShouldEqual, "Charlie")
		})

		Convey("用户不能删除内置声音", func() {
			err := svc.Delete(ctx, "builtin-charlie", "user-1")
			So(err, ShouldEqual, ErrStoryForbidden)
		})

		Convey("内置声音的试听URL走签名下载", func() {
			v, _ := repo.FindByVoiceID(ctx, "builtin-charlie")
			url := svc.SampleURL(ctx, v)
			So(url, ShouldEqual, "https://cdn.example.com/signed/voice-samples/default/builtin-charlie.mp3")
		})

		Convey("无留档样本时试听URL为空", func() {
			v, _ := repo.FindByVoiceID(ctx, "cloned-1")
			So(svc.SampleURL(ctx, v), ShouldBeEmpty)
		})
	})
}
