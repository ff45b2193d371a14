package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage1 视频配置（脚本阶段）
type Stage1 struct {
	NumShots        int         `json:"numShots"`
	DurationPerShot float64     `json:"durationPerShot"`
	ContentPrompt   string      `json:"contentPrompt"`
	ProductImages   []string    `json:"productImages"`
	ReferenceImages []string    `json:"referenceImages"`
	ImageParameters []Parameter `json:"imageParameters"`
}

// Stage2 故事板
type Stage2 struct {
	Shots    []Shot    `json:"shots"`
	Comments []JSONMap `json:"comments"`
}

// GeneratedImage 按 shotNumber 为键的生成图记录，每个分镜至多一条
type GeneratedImage struct {
	ShotNumber int     `json:"shotNumber"`
	Url        string  `json:"url"`
	Prompt     string  `json:"prompt,omitempty"`
	Parameters JSONMap `json:"parameters,omitempty"`
	CreatedAt  string  `json:"createdAt,omitempty"`
}

// Stage3 图片生成
type Stage3 struct {
	GeneratedImages []GeneratedImage `json:"generatedImages"`
}

type VideoPrompt struct {
	ShotNumber int     `json:"shotNumber"`
	JSON       JSONMap `json:"json"`
}

type GeneratedVideo struct {
	ShotNumber  int    `json:"shotNumber"`
	Url         string `json:"url"`
	GeneratedAt string `json:"generatedAt,omitempty"`
}

// Stage4 视频生成
type Stage4 struct {
	VideoPrompts    []VideoPrompt    `json:"videoPrompts"`
	GeneratedVideos []GeneratedVideo `json:"generatedVideos"`
}

type EditedVideo struct {
	ShotNumber int      `json:"shotNumber"`
	Url        string   `json:"url"`
	EditedAt   string   `json:"editedAt"`
	Edits      []string `json:"edits,omitempty"`
}

type FinalVideo struct {
	Url           string  `json:"url"`
	GeneratedAt   string  `json:"generatedAt"`
	Quality       string  `json:"quality"`
	Duration      float64 `json:"duration"`
	ShotsIncluded []int   `json:"shotsIncluded"`
}

// Stage5 剪辑与最终合成
type Stage5 struct {
	EditedVideos []EditedVideo `json:"editedVideos"`
	FinalVideo   *FinalVideo   `json:"finalVideo"`
}

// Video 流水线推进的聚合单元，五个阶段子记录整体以 JSON 落库
type Video struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectId   string    `gorm:"index;type:varchar(64)" json:"projectId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stage1      Stage1    `gorm:"serializer:json" json:"stage1"`
	Stage2      Stage2    `gorm:"serializer:json" json:"stage2"`
	Stage3      Stage3    `gorm:"serializer:json" json:"stage3"`
	Stage4      Stage4    `gorm:"serializer:json" json:"stage4"`
	Stage5      Stage5    `gorm:"serializer:json" json:"stage5"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// ISO8601 阶段子记录内的时间戳统一格式
func ISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewVideo 创建视频，五个阶段子记录必须全部初始化，不允许部分构造
func NewVideo(projectID, name string, now time.Time) Video {
	return Video{
		ID:          uuid.NewString(),
		ProjectId:   projectID,
		Name:        name,
		Description: "",
		Stage1: Stage1{
			NumShots:        8,
			DurationPerShot: 8,
			ContentPrompt:   "",
			ProductImages:   []string{},
			ReferenceImages: []string{},
			ImageParameters: []Parameter{},
		},
		Stage2: Stage2{Shots: []Shot{}, Comments: []JSONMap{}},
		Stage3: Stage3{GeneratedImages: []GeneratedImage{}},
		Stage4: Stage4{VideoPrompts: []VideoPrompt{}, GeneratedVideos: []GeneratedVideo{}},
		Stage5: Stage5{EditedVideos: []EditedVideo{}, FinalVideo: nil},
		Created:  now,
		Modified: now,
	}
}

// DuplicateVideo 复制视频：新 ID、名称加 " - Copy"、时间戳重置，内容深拷贝
func DuplicateVideo(src Video, now time.Time) Video {
	copy := src.Clone()
	copy.ID = src.ID + "-copy-" + uuid.NewString()[:8]
	copy.Name = src.Name + " - Copy"
	copy.Created = now
	copy.Modified = now
	return copy
}

func (s Stage1) Clone() Stage1 {
	out := s
	out.ProductImages = cloneStrings(s.ProductImages)
	out.ReferenceImages = cloneStrings(s.ReferenceImages)
	out.ImageParameters = cloneParameters(s.ImageParameters)
	return out
}

func (s Stage2) Clone() Stage2 {
	out := s
	if s.Shots != nil {
		out.Shots = make([]Shot, len(s.Shots))
		for i, sh := range s.Shots {
			out.Shots[i] = sh.Clone()
		}
	}
	if s.Comments != nil {
		out.Comments = make([]JSONMap, len(s.Comments))
		for i, c := range s.Comments {
			out.Comments[i] = c.Clone()
		}
	}
	return out
}

func (g GeneratedImage) Clone() GeneratedImage {
	out := g
	out.Parameters = g.Parameters.Clone()
	return out
}

func (s Stage3) Clone() Stage3 {
	out := s
	if s.GeneratedImages != nil {
		out.GeneratedImages = make([]GeneratedImage, len(s.GeneratedImages))
		for i, g := range s.GeneratedImages {
			out.GeneratedImages[i] = g.Clone()
		}
	}
	return out
}

func (s Stage4) Clone() Stage4 {
	out := s
	if s.VideoPrompts != nil {
		out.VideoPrompts = make([]VideoPrompt, len(s.VideoPrompts))
		for i, p := range s.VideoPrompts {
			out.VideoPrompts[i] = VideoPrompt{ShotNumber: p.ShotNumber, JSON: p.JSON.Clone()}
		}
	}
	if s.GeneratedVideos != nil {
		out.GeneratedVideos = append([]GeneratedVideo(nil), s.GeneratedVideos...)
	}
	return out
}

func (s Stage5) Clone() Stage5 {
	out := s
	if s.EditedVideos != nil {
		out.EditedVideos = make([]EditedVideo, len(s.EditedVideos))
		for i, e := range s.EditedVideos {
			ec := e
			ec.Edits = cloneStrings(e.Edits)
			out.EditedVideos[i] = ec
		}
	}
	if s.FinalVideo != nil {
		fv := *s.FinalVideo
		if s.FinalVideo.ShotsIncluded != nil {
			fv.ShotsIncluded = append([]int(nil), s.FinalVideo.ShotsIncluded...)
		}
		out.FinalVideo = &fv
	}
	return out
}

// Clone 聚合整体深拷贝，流水线操作以快照方式修改
func (v Video) Clone() Video {
	out := v
	out.Stage1 = v.Stage1.Clone()
	out.Stage2 = v.Stage2.Clone()
	out.Stage3 = v.Stage3.Clone()
	out.Stage4 = v.Stage4.Clone()
	out.Stage5 = v.Stage5.Clone()
	return out
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss...)
}
