package playback

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDocument(t *testing.T) {
	Convey("ParseDocument 能正确解析和校验故事文档", t, func() {
		Convey("合法文档应解析成功", func() {
			data := []byte(`{
				"title": "The Sleepy Fox",
				"segments": [
					{"text": "Once upon a time...", "image_description": "a fox", "audio_ambience": "forest", "interaction_point": false, "imageUrl": "https://example.com/1.png", "narrationAudio": "QUJD", "ambienceAudio": ""},
					{"text": "The fox fell asleep.", "image_description": "", "audio_ambience": "", "interaction_point": true, "imageUrl": "", "narrationAudio": "", "ambienceAudio": ""}
				]
			}`)

			doc, err := ParseDocument(data)
			So(err, ShouldBeNil)
			So(doc.Title, ShouldEqual, "The Sleepy Fox")
			So(len(doc.Segments), ShouldEqual, 2)
			So(doc.Segments[1].InteractionPoint, ShouldBeTrue)
		})

		Convey("非JSON内容应返回 ErrInvalidDocument", func() {
			_, err := ParseDocument([]byte("not json"))
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
		})

		Convey("分段列表为空应返回 ErrInvalidDocument", func() {
			_, err := ParseDocument([]byte(`{"title": "Empty", "segments": []}`))
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
		})

		Convey("缺失 segments 字段应返回 ErrInvalidDocument", func() {
			_, err := ParseDocument([]byte(`{"title": "Missing"}`))
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
		})

		Convey("某个分段缺失文本应返回 ErrInvalidDocument", func() {
			data := []byte(`{"title": "Bad", "segments": [{"text": "ok"}, {"text": "   "}]}`)
			_, err := ParseDocument(data)
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
		})

		Convey("插图和音频缺失不影响校验（降级而非失败）", func() {
			data := []byte(`{"title": "Degraded", "segments": [{"text": "still fine"}]}`)
			doc, err := ParseDocument(data)
			So(err, ShouldBeNil)
			So(doc.Segments[0].ImageURL, ShouldBeEmpty)
			So(doc.Segments[0].NarrationAudio, ShouldBeEmpty)
		})
	})
}

func TestAudioSource(t *testing.T) {
	Convey("audioSource 能把音频字段转成资源地址", t, func() {
		Convey("base64内联数据转为 data URI", func() {
			So(audioSource("QUJDREVG"), ShouldEqual, "data:audio/mp3;base64,QUJDREVG")
		})

		Convey("URL 原样返回", func() {
			So(audioSource("https://cdn.example.com/a.mp3"), ShouldEqual, "https://cdn.example.com/a.mp3")
			So(audioSource("data:audio/mp3;base64,QQ=="), ShouldEqual, "data:audio/mp3;base64,QQ==")
		})

		Convey("空串表示无资源", func() {
			So(audioSource(""), ShouldBeEmpty)
		})
	})
}
