package elevenlabs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"lullaby/internal/config"
)

func newTestClient(serverURL string) *Client {
	c, _ := NewClient(&config.VoiceConfig{
		APIURL: serverURL,
		APIKey: "test-key",
	})
	return c
}

func TestTextToSpeech(t *testing.T) {
	Convey("旁白合成", t, func() {
		Convey("请求路径和认证头正确，返回音频字节", func(c C) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Path, ShouldEqual, "/text-to-speech/voice-42")
				c.So(r.Header.Get("xi-api-key"), ShouldEqual, "test-key")
				c.So(r.Header.Get("Content-Type"), ShouldEqual, "application/json")
				w.Write([]byte("mp3-bytes"))
			}))
			defer srv.Close()

			audio, err := newTestClient(srv.URL).TextToSpeech(context.Background(), "Good night.", "voice-42")
			So(err, ShouldBeNil)
			So(string(audio), ShouldEqual, "mp3-bytes")
		})

		Convey("上游报错时返回错误", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"detail":"quota exceeded"}`))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).TextToSpeech(context.Background(), "Good night.", "voice-42")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "429")
		})

		Convey("缺少voice_id直接拒绝", func() {
			_, err := newTestClient("http://localhost").TextToSpeech(context.Background(), "text", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSoundEffect(t *testing.T) {
	Convey("环境音效生成", t, func(c C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.So(r.URL.Path, ShouldEqual, "/text-to-sound-effects")
			w.Write([]byte("ambience-bytes"))
		}))
		defer srv.Close()

		audio, err := newTestClient(srv.URL).SoundEffect(context.Background(), "soft rain on a window")
		So(err, ShouldBeNil)
		So(string(audio), ShouldEqual, "ambience-bytes")
	})
}

func TestAddVoice(t *testing.T) {
	Convey("声音克隆", t, func() {
		Convey("multipart上传并返回voice_id", func(c C) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Path, ShouldEqual, "/voices/add")
				c.So(r.Header.Get("xi-api-key"), ShouldEqual, "test-key")

				err := r.ParseMultipartForm(1 << 20)
				c.So(err, ShouldBeNil)
				c.So(r.FormValue("name"), ShouldEqual, "Mom")
				c.So(r.FormValue("description"), ShouldEqual, "gentle voice")

				_, header, err := r.FormFile("files")
				c.So(err, ShouldBeNil)
				c.So(header.Filename, ShouldEqual, "sample.mp3")

				w.Write([]byte(`{"voice_id":"cloned-7"}`))
			}))
			defer srv.Close()

			voiceID, err := newTestClient(srv.URL).AddVoice(
				context.Background(), "Mom", "gentle voice",
				strings.NewReader("sample-audio"), "sample.mp3",
			)
			So(err, ShouldBeNil)
			So(voiceID, ShouldEqual, "cloned-7")
		})

		Convey("上游未返回voice_id时报错", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).AddVoice(
				context.Background(), "Mom", "",
				strings.NewReader("sample-audio"), "sample.mp3",
			)
			So(err, ShouldNotBeNil)
		})

		Convey("缺少名称直接拒绝", func() {
			_, err := newTestClient("http://localhost").AddVoice(
				context.Background(), "", "",
				strings.NewReader("x"), "s.mp3",
			)
			So(err, ShouldNotBeNil)
		})
	})
}
