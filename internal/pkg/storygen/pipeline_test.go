package storygen

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeLLM struct {
	output string
	err    error
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.output, f.err
}

type fakeImage struct {
	url   string
	err   error
	calls int
}

func (f *fakeImage) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeTTS struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

type fakeAmbience struct {
	audio []byte
	err   error
}

func (f *fakeAmbience) SoundEffect(ctx context.Context, description string) ([]byte, error) {
	return f.audio, f.err
}

const draftJSON = `{"title":"The Moonlit Pond","segments":[{"text":"A frog settled down.","image_description":"a frog on a lily pad","audio_ambience":"gentle pond water"},{"text":"Good night, frog.","image_description":"stars over the pond","audio_ambience":"soft night breeze"}]}`

func TestGenerate(t *testing.T) {
	Convey("故事生成流水线", t, func() {
		ctx := context.Background()

		Convey("完整流水线产出带资源的文档", func() {
			llm := &fakeLLM{output: draftJSON}
			img := &fakeImage{url: "https://cdn.example.com/a.png"}
			tts := &fakeTTS{audio: []byte("narration")}
			amb := &fakeAmbience{audio: []byte("ambience")}

			gen, err := NewGenerator(llm, img, tts, amb)
			So(err, ShouldBeNil)

			doc, err := gen.Generate(ctx, "a frog", "voice-1")
			So(err, ShouldBeNil)
			So(doc.Title, ShouldEqual, "The Moonlit Pond")
			So(len(doc.Segments), ShouldEqual, 2)
			So(doc.Segments[0].ImageURL, ShouldEqual, "https://cdn.example.com/a.png")
			So(doc.Segments[0].NarrationAudio, ShouldEqual, base64.StdEncoding.EncodeToString([]byte("narration")))
			So(doc.Segments[0].AmbienceAudio, ShouldEqual, base64.StdEncoding.EncodeToString([]byte("ambience")))
			So(img.calls, ShouldEqual, 2)
			So(tts.calls, ShouldEqual, 2)
		})

		Convey("LLM 失败返回生成错误", func() {
			gen, _ := NewGenerator(&fakeLLM{err: errors.New("upstream down")}, nil, nil, nil)
			doc, err := gen.Generate(ctx, "a frog", "")
			So(doc, ShouldBeNil)
			So(errors.Is(err, ErrGenerationFailed), ShouldBeTrue)
		})

		Convey("模型输出无法解析时返回生成错误", func() {
			gen, _ := NewGenerator(&fakeLLM{output: "sorry, I cannot do that"}, nil, nil, nil)
			doc, err := gen.Generate(ctx, "a frog", "")
			So(doc, ShouldBeNil)
			So(errors.Is(err, ErrGenerationFailed), ShouldBeTrue)
		})

		Convey("插图失败只降级不中断", func() {
			img := &fakeImage{err: errors.New("image service down")}
			gen, _ := NewGenerator(&fakeLLM{output: draftJSON}, img, nil, nil)
			doc, err := gen.Generate(ctx, "a frog", "")
			So(err, ShouldBeNil)
			So(doc.Segments[0].ImageURL, ShouldBeEmpty)
			So(doc.Segments[0].Text, ShouldEqual, "A frog settled down.")
		})

		Convey("旁白失败只降级不中断", func() {
			tts := &fakeTTS{err: errors.New("tts quota exceeded")}
			gen, _ := NewGenerator(&fakeLLM{output: draftJSON}, nil, tts, nil)
			doc, err := gen.Generate(ctx, "a frog", "voice-1")
			So(err, ShouldBeNil)
			So(doc.Segments[0].NarrationAudio, ShouldBeEmpty)
		})

		Convey("未指定声音时跳过旁白合成", func() {
			tts := &fakeTTS{audio: []byte("x")}
			gen, _ := NewGenerator(&fakeLLM{output: draftJSON}, nil, tts, nil)
			_, err := gen.Generate(ctx, "a frog", "")
			So(err, ShouldBeNil)
			So(tts.calls, ShouldEqual, 0)
		})

		Convey("缺少 LLM provider 时拒绝创建", func() {
			gen, err := NewGenerator(nil, nil, nil, nil)
			So(gen, ShouldBeNil)
			So(err, ShouldNotBeNil)
		})
	})
}
