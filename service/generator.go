package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ContentCreator-server/models"
)

// 媒体生成后端的契约：每个分镜每次动作一个请求，以 shotNumber 为键，
// 重试安全（不假设 at-most-once）
type ImageRequest struct {
	ShotNumber int            `json:"shot_number"`
	Prompt     string         `json:"prompt"`
	Parameters models.JSONMap `json:"params,omitempty"`
}

type ImageResult struct {
	Url string `json:"url"`
}

type VideoRequest struct {
	ShotNumber      int            `json:"shot_number"`
	ImageUrl        string         `json:"image_url,omitempty"`
	Prompt          models.JSONMap `json:"prompt,omitempty"`
	DurationSeconds float64        `json:"duration_sec"`
}

type VideoResult struct {
	Url             string  `json:"url"`
	DurationSeconds float64 `json:"duration_sec"`
}

type AssembleRequest struct {
	VideoID  string   `json:"video_id"`
	ClipUrls []string `json:"clip_urls"`
	Quality  string   `json:"quality"`
}

type Generator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error)
	GenerateVideo(ctx context.Context, req VideoRequest) (VideoResult, error)
	AssembleVideo(ctx context.Context, req AssembleRequest) (VideoResult, error)
}

// WorkerGenerator 调用外部 Python Worker 的 HTTP 实现
type WorkerGenerator struct {
	Endpoint string
	Client   *http.Client
}

func NewWorkerGenerator(endpoint string) *WorkerGenerator {
	return &WorkerGenerator{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// workerResponse Worker 的统一响应包
type workerResponse struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (w *WorkerGenerator) call(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("worker connection error: %w", err)
	}
	defer resp.Body.Close()

	var wr workerResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return fmt.Errorf("worker response decode failed: %w", err)
	}
	if wr.Status != "success" {
		return fmt.Errorf("worker error: %s", wr.Error)
	}
	return json.Unmarshal(wr.Result, out)
}

func (w *WorkerGenerator) GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error) {
	var out ImageResult
	err := w.call(ctx, "/v1/images", req, &out)
	return out, err
}

func (w *WorkerGenerator) GenerateVideo(ctx context.Context, req VideoRequest) (VideoResult, error) {
	var out VideoResult
	err := w.call(ctx, "/v1/videos", req, &out)
	return out, err
}

func (w *WorkerGenerator) AssembleVideo(ctx context.Context, req AssembleRequest) (VideoResult, error) {
	var out VideoResult
	err := w.call(ctx, "/v1/assemble", req, &out)
	return out, err
}

// PlaceholderGenerator 本地开发与测试用，确定性地编造占位 URL
type PlaceholderGenerator struct {
	BaseUrl string
}

func NewPlaceholderGenerator() *PlaceholderGenerator {
	return &PlaceholderGenerator{BaseUrl: "https://media.example.com"}
}

func (g *PlaceholderGenerator) GenerateImage(_ context.Context, req ImageRequest) (ImageResult, error) {
	return ImageResult{Url: fmt.Sprintf("%s/images/shot-%d.jpg", g.BaseUrl, req.ShotNumber)}, nil
}

func (g *PlaceholderGenerator) GenerateVideo(_ context.Context, req VideoRequest) (VideoResult, error) {
	return VideoResult{
		Url:             fmt.Sprintf("%s/videos/shot-%d.mp4", g.BaseUrl, req.ShotNumber),
		DurationSeconds: req.DurationSeconds,
	}, nil
}

func (g *PlaceholderGenerator) AssembleVideo(_ context.Context, req AssembleRequest) (VideoResult, error) {
	return VideoResult{
		Url:             fmt.Sprintf("%s/videos/%s-final.mp4", g.BaseUrl, req.VideoID),
		DurationSeconds: float64(len(req.ClipUrls)) * FinalPerShotSeconds,
	}, nil
}
