package storygen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// storySystemPrompt 睡前故事生成的系统提示词
// 要求模型只输出 JSON，分段结构与播放器的段落模型一致
const storySystemPrompt = `You are a children's bedtime story writer. Create a gentle, calming bedtime story suitable for children ages 3-8. The story should be soothing and end peacefully to help children fall asleep.

Return ONLY a JSON object with this exact structure, no other text:
{
  "title": "Story Title",
  "segments": [
    {
      "text": "A short paragraph of the story (2-4 sentences).",
      "image_description": "A detailed visual description of this scene for an illustrator, in a soft dreamy children's book style.",
      "audio_ambience": "A short description of gentle background sounds for this scene (e.g. soft rain, crackling fireplace, night crickets).",
      "interaction_point": false
    }
  ]
}

Rules:
- Create 5 to 8 segments.
- Every segment must have non-empty text.
- Set interaction_point to true on at most two segments where a parent might pause and ask the child a question.
- The final segment must be calm and conclusive, guiding the child toward sleep.`

// StoryDraft 模型产出的故事草稿，尚未附加图片与音频
type StoryDraft struct {
	Title    string         `json:"title"`
	Segments []DraftSegment `json:"segments"`
}

// DraftSegment 草稿中的单个段落
type DraftSegment struct {
	Text             string `json:"text"`
	ImageDescription string `json:"image_description"`
	AudioAmbience    string `json:"audio_ambience"`
	InteractionPoint bool   `json:"interaction_point"`
}

// SystemPrompt 返回故事生成的系统提示词
func SystemPrompt() string {
	return storySystemPrompt
}

// BuildStoryPrompt 构造用户提示词
func BuildStoryPrompt(premise string) string {
	premise = strings.TrimSpace(premise)
	if premise == "" {
		premise = "a gentle adventure that ends with everyone falling asleep"
	}
	return fmt.Sprintf("Create a bedtime story about: %s", premise)
}

// ParseStoryDraft 解析模型输出为故事草稿
// 模型偶尔会包裹 markdown 代码块或附加说明文字，先剥离再解析
// 解析失败或结构不完整时返回错误，不产出部分结果
func ParseStoryDraft(raw string) (*StoryDraft, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var draft StoryDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return nil, fmt.Errorf("unmarshal story draft: %w", err)
	}

	if draft.Title == "" {
		return nil, fmt.Errorf("story draft has no title")
	}
	if len(draft.Segments) == 0 {
		return nil, fmt.Errorf("story draft has no segments")
	}
	for i, seg := range draft.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			return nil, fmt.Errorf("segment %d has empty text", i)
		}
	}
	return &draft, nil
}

// extractJSON 从模型输出中提取 JSON 对象文本
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// 剥离 ```json ... ``` 代码块
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
