package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"

	"lullaby/internal/config"
	"lullaby/internal/model/story"
	"lullaby/internal/pkg/elevenlabs"
	"lullaby/internal/pkg/logger"
	"lullaby/internal/pkg/mongodb"
	"lullaby/internal/pkg/storage"
	"lullaby/internal/pkg/storagefactory"
	storyrepo "lullaby/internal/repository/story"
)

// 试听样本文案，每个内置声音各合成一段
const sampleText = "Hello! This is a sample of my voice for storytelling. I hope you enjoy listening to it!"

type defaultVoice struct {
	id          string
	name        string
	description string
}

// 两男两女四个内置旁白声音，新用户不必先克隆就能生成有声故事
var defaultVoices = []defaultVoice{
	{"IKne3meq5aSn9XLyUdCD", "Charlie", "Male narrator with a friendly tone"},
	{"JBFqnCBsd6RMkjVDRZzb", "George", "Male narrator with a warm, engaging voice"},
	{"EXAVITQu4vr4xnSDxMaL", "Sarah", "Female narrator with a clear, professional voice"},
	{"XB0fDUnXU5powFXDhCwa", "Charlotte", "Female narrator with a gentle, soothing voice"},
}

func main() {
	// 1. 加载配置（与 cmd/root.go 保持一致的搜索路径）
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.lullaby")

	viper.SetEnvPrefix("LULLABY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		os.Exit(1)
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.Voice.APIKey == "" {
		log.Fatal().Msg("voice API key not configured, cannot synthesize samples")
	}

	// 2. 连接 MongoDB
	client, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongo")
	}
	defer func() {
		_ = client.Close(context.Background())
	}()

	ctx := context.Background()
	voiceRepo := storyrepo.NewVoiceSampleRepo(client.Database())

	voiceClient, err := elevenlabs.NewClient(&cfg.Voice)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize voice client")
	}

	// 3. 存储不可用时仍然落库，只是没有试听样本
	var store storage.Storage
	if s, err := storagefactory.NewStorage(ctx, &cfg.Storage); err != nil {
		log.Warn().Err(err).Msg("storage unavailable, seeding without sample audio")
	} else {
		store = s
	}

	seeded := 0
	for _, v := range defaultVoices {
		if _, err := voiceRepo.FindByVoiceID(ctx, v.id); err == nil {
			log.Info().Str("voice", v.name).Msg("voice already seeded, skipping")
			continue
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Fatal().Err(err).Str("voice", v.name).Msg("failed to query voice sample")
		}

		samplePath := seedSample(ctx, voiceClient, store, v)

		row := &story.VoiceSample{
			VoiceID:     v.id,
			VoiceName:   v.name,
			Description: v.description,
			SamplePath:  samplePath,
		}
		if err := voiceRepo.Create(ctx, row); err != nil {
			log.Fatal().Err(err).Str("voice", v.name).Msg("failed to persist voice sample")
		}
		seeded++
		log.Info().Str("voice", v.name).Str("voice_id", v.id).Msg("voice seeded")
	}

	fmt.Printf("Default voices seeded: %d new, %d total\n", seeded, len(defaultVoices))
}

// seedSample 合成并留档试听样本，失败只降级为无样本
func seedSample(ctx context.Context, client *elevenlabs.Client, store storage.Storage, v defaultVoice) string {
	if store == nil {
		return ""
	}

	audio, err := client.TextToSpeech(ctx, sampleText, v.id)
	if err != nil {
		log.Warn().Err(err).Str("voice", v.name).Msg("sample synthesis failed, seeding without audio")
		return ""
	}

	samplePath := fmt.Sprintf("voice-samples/default/%s.mp3", v.id)
	if _, err := store.Upload(ctx, samplePath, bytes.NewReader(audio), "audio/mpeg"); err != nil {
		log.Warn().Err(err).Str("voice", v.name).Msg("sample upload failed, seeding without audio")
		return ""
	}
	return samplePath
}
