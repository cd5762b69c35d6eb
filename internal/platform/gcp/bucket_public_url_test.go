package gcp

import (
	"testing"

	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

func testBucketService(t *testing.T, cfg StorageConfig, audioCDN string) *bucketService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return newBucketService(log, nil, cfg,
		bucketConfig{name: "scans"},
		bucketConfig{name: "audio", cdnDomain: audioCDN},
	)
}

func TestGetPublicURL(t *testing.T) {
	cases := []struct {
		name     string
		cfg      StorageConfig
		cdn      string
		category BucketCategory
		key      string
		want     string
	}{
		{
			name:     "gcs default",
			cfg:      StorageConfig{Mode: ObjectStorageModeGCS},
			category: BucketCategoryPageScan,
			key:      "/quizzes/q1/page-0.png",
			want:     "https://storage.googleapis.com/scans/quizzes/q1/page-0.png",
		},
		{
			name:     "cdn wins",
			cfg:      StorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"},
			cdn:      "cdn.example.com",
			category: BucketCategoryAudio,
			key:      "tts/questions/x.mp3",
			want:     "https://cdn.example.com/tts/questions/x.mp3",
		},
		{
			name:     "public base override",
			cfg:      StorageConfig{Mode: ObjectStorageModeGCS, PublicBaseURL: "http://localhost:4443"},
			category: BucketCategoryPageScan,
			key:      "a.png",
			want:     "http://localhost:4443/scans/a.png",
		},
		{
			name:     "emulator media url",
			cfg:      StorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"},
			category: BucketCategoryPageScan,
			key:      "quizzes/q1/page 0.png",
			want:     "http://fake-gcs:4443/download/storage/v1/b/scans/o/quizzes%2Fq1%2Fpage%200.png?alt=media",
		},
		{
			name:     "unknown category",
			cfg:      StorageConfig{Mode: ObjectStorageModeGCS},
			category: BucketCategory("nope"),
			key:      "k",
			want:     "k",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bs := testBucketService(t, tc.cfg, tc.cdn)
			if got := bs.GetPublicURL(tc.category, tc.key); got != tc.want {
				t.Fatalf("GetPublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a.PNG":          "image/png",
		"b.jpeg":         "image/jpeg",
		"answers/x.webm": "audio/webm",
		"tts/q.mp3":      "audio/mpeg",
		"r.wav?x=1":      "audio/wav",
		"unknown.bin":    "application/octet-stream",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
