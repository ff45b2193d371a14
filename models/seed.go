package models

import (
	"time"

	"gorm.io/gorm"
)

// Seed 写入示例数据，仅供本地开发和测试使用，业务逻辑不依赖
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Project{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	projects := []Project{
		{
			ID:          "PRJ-001",
			Name:        "KitchenAid Mixer Campaign",
			Description: "Spring campaign for new KitchenAid mixer",
			Type:        "Kitchen Appliance Commercial",
			Status:      ProjectStatusActive,
			Created:     now,
			Modified:    now,
			Config: JSONMap{
				"video": map[string]interface{}{
					"aspect_ratio": "16:9",
					"duration_sec": 5,
					"resolution":   "4K",
					"style":        "photorealistic, premium appliance commercial",
				},
				"shot": map[string]interface{}{
					"shot_name": "Everyday Indian Kitchen – Product Reveal Pull-Out",
					"shot_type": "single continuous shot",
					"camera": map[string]interface{}{
						"movement": map[string]interface{}{
							"type":         "slow pull-out",
							"duration_sec": 5,
							"easing":       "ease-in-out",
						},
						"stabilization": "smooth cinematic",
					},
					"lighting": map[string]interface{}{
						"base_light": "soft morning sunlight from window",
					},
				},
				"audio": map[string]interface{}{
					"music": map[string]interface{}{
						"track_type": "soft premium instrumental",
						"mood":       "warm, calm, everyday",
					},
				},
				"color_grading": map[string]interface{}{
					"tone":       "warm natural",
					"contrast":   "soft",
					"saturation": "realistic",
				},
				"restrictions": map[string]interface{}{
					"no_people":         true,
					"no_text":           true,
					"no_brand_overlays": true,
				},
			},
		},
		{
			ID:          "PRJ-002",
			Name:        "Real Estate Virtual Tour",
			Description: "360° virtual tour for luxury apartment complex",
			Type:        "Real Estate Marketing",
			Status:      ProjectStatusActive,
			Created:     now,
			Modified:    now,
		},
	}
	for i := range projects {
		if err := db.Create(&projects[i]).Error; err != nil {
			return err
		}
	}

	templates := []ProjectTemplate{
		{
			ID:               "template-001",
			Name:             "Kitchen Appliance Commercial",
			Purpose:          "Create promotional videos for kitchen appliances",
			ShortDescription: "Professional template for showcasing kitchen appliances with lifestyle shots",
			Category:         "E-commerce",
			ContentPrompt:    "Create a 30-second commercial video showcasing a kitchen appliance. Focus on the product's features, ease of use, and benefits.",
			ImageParameters: []TemplateParameter{
				{ID: "1", Key: "aspect_ratio", Value: "16:9", Type: TemplateParamText, Required: true, Description: "Video aspect ratio"},
				{ID: "2", Key: "resolution", Value: "1920x1080", Type: TemplateParamText, Required: true, Description: "Video resolution"},
				{ID: "3", Key: "fps", Value: "30", Type: TemplateParamNumber, Required: true, Description: "Frames per second"},
			},
			VideoParameters: []TemplateParameter{
				{ID: "4", Key: "duration", Value: "30", Type: TemplateParamNumber, Required: true, Description: "Video duration in seconds"},
				{ID: "5", Key: "brand_logo", Value: "", Type: TemplateParamFile, Required: true, Description: "Brand logo file"},
			},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:               "template-002",
			Name:             "Real Estate Virtual Tour",
			Purpose:          "Create 360° virtual tours for properties",
			ShortDescription: "Immersive property tours with detailed room showcases",
			Category:         "Property",
			ContentPrompt:    "Generate a virtual tour video for a luxury property. Include smooth transitions between rooms and highlight key features.",
			ImageParameters: []TemplateParameter{
				{ID: "6", Key: "room_count", Value: "5", Type: TemplateParamNumber, Required: true, Description: "Number of rooms to feature"},
				{ID: "7", Key: "transition_style", Value: "smooth_fade", Type: TemplateParamText, Required: true},
			},
			VideoParameters: []TemplateParameter{
				{ID: "8", Key: "tour_duration", Value: "90", Type: TemplateParamNumber, Required: true, Description: "Tour duration in seconds"},
			},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for i := range templates {
		if err := db.Create(&templates[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
