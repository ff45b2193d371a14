package models

// 分镜状态
const (
	ShotStatusPending   = "pending"
	ShotStatusGenerated = "generated"
	ShotStatusUploaded  = "uploaded"
)

// Shot 一个故事板单元。Number 即分镜槽位号（1 起），创建后固定，
// 删除分镜不会移动其它分镜的编号
type Shot struct {
	Number            int         `json:"number"`
	Description       string      `json:"description"`
	ImagePrompt       string      `json:"imagePrompt"`
	Parameters        []Parameter `json:"parameters"`
	Status            string      `json:"status"`
	GeneratedImageUrl string      `json:"generatedImageUrl,omitempty"`
}

// PlaceholderShot 合成的占位分镜行，不落库
func PlaceholderShot(number int) Shot {
	return Shot{
		Number:      number,
		Description: "",
		ImagePrompt: "",
		Parameters:  []Parameter{},
		Status:      ShotStatusPending,
	}
}

func (s Shot) Clone() Shot {
	out := s
	out.Parameters = cloneParameters(s.Parameters)
	return out
}
