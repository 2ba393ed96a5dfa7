package storagefactory

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"lullaby/internal/config"
)

func TestNewStorage_Local(t *testing.T) {
	tmpDir := t.TempDir()
	baseURL := "http://localhost:8080/storage"

	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr bool
	}{
		{
			name: "valid local storage config",
			cfg: &config.StorageConfig{
				Type: "local",
				Local: &config.LocalConfig{
					BasePath:      tmpDir,
					BaseURL:       baseURL,
					PresignExpiry: 3600,
				},
			},
			wantErr: false,
		},
		{
			name: "missing local config",
			cfg: &config.StorageConfig{
				Type:  "local",
				Local: nil,
			},
			wantErr: true,
		},
		{
			name: "missing oss config",
			cfg: &config.StorageConfig{
				Type: "oss",
				OSS:  nil,
			},
			wantErr: true,
		},
		{
			name: "unsupported storage type",
			cfg: &config.StorageConfig{
				Type: "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage, err := NewStorage(ctx, tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewStorage() expected error, got nil")
				}
				if storage != nil {
					t.Errorf("NewStorage() expected nil storage, got %v", storage)
				}
				return
			}

			if err != nil {
				t.Errorf("NewStorage() unexpected error: %v", err)
				return
			}

			if storage == nil {
				t.Errorf("NewStorage() expected storage instance, got nil")
			}
		})
	}
}

func TestLocalStorage_Operations(t *testing.T) {
	tmpDir := t.TempDir()
	baseURL := "http://localhost:8080/storage"

	cfg := &config.StorageConfig{
		Type: "local",
		Local: &config.LocalConfig{
			BasePath:      tmpDir,
			BaseURL:       baseURL,
			PresignExpiry: 3600,
		},
	}

	ctx := context.Background()
	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	// 测试上传
	testKey := "illustrations/test.png"
	testContent := "fake image bytes"
	testReader := strings.NewReader(testContent)

	url, err := storage.Upload(ctx, testKey, testReader, "image/png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	expectedURL := baseURL + "/" + testKey
	if url != expectedURL {
		t.Errorf("Upload() url = %v, want %v", url, expectedURL)
	}

	// 验证文件是否存在
	exists, err := storage.Exists(ctx, testKey)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true")
	}

	// 测试下载
	reader, err := storage.Download(ctx, testKey)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer reader.Close()

	downloadedContent, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if string(downloadedContent) != testContent {
		t.Errorf("Download() content = %v, want %v", string(downloadedContent), testContent)
	}

	// 测试获取文件信息
	fileInfo, err := storage.GetFileInfo(ctx, testKey)
	if err != nil {
		t.Fatalf("GetFileInfo() error = %v", err)
	}

	if fileInfo.Key != testKey {
		t.Errorf("GetFileInfo() Key = %v, want %v", fileInfo.Key, testKey)
	}

	if fileInfo.Size != int64(len(testContent)) {
		t.Errorf("GetFileInfo() Size = %v, want %v", fileInfo.Size, len(testContent))
	}

	// 测试预签名下载URL
	presignedURL, err := storage.GetPresignedDownloadURL(ctx, testKey, time.Hour)
	if err != nil {
		t.Fatalf("GetPresignedDownloadURL() error = %v", err)
	}

	if !strings.Contains(presignedURL, baseURL) {
		t.Errorf("GetPresignedDownloadURL() url = %v, should contain %v", presignedURL, baseURL)
	}

	// 测试删除
	err = storage.Delete(ctx, testKey)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// 验证文件已删除
	exists, err = storage.Exists(ctx, testKey)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false (file should be deleted)")
	}
}

func TestLocalStorage_NonExistentFile(t *testing.T) {
	cfg := &config.StorageConfig{
		Type: "local",
		Local: &config.LocalConfig{
			BasePath:      t.TempDir(),
			BaseURL:       "http://localhost:8080/storage",
			PresignExpiry: 3600,
		},
	}

	ctx := context.Background()
	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	nonExistentKey := "nonexistent/file.txt"

	// 测试下载不存在的文件
	if _, err := storage.Download(ctx, nonExistentKey); err == nil {
		t.Errorf("Download() expected error for non-existent file, got nil")
	}

	// 测试获取不存在的文件信息
	if _, err := storage.GetFileInfo(ctx, nonExistentKey); err == nil {
		t.Errorf("GetFileInfo() expected error for non-existent file, got nil")
	}
}
