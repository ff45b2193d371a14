package service

import (
	"strings"
	"time"

	"ContentCreator-server/models"

	"gorm.io/gorm"
)

// TemplateService 模板的扁平 CRUD，与流水线共享参数子模型
type TemplateService struct {
	DB *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{DB: db}
}

func (s *TemplateService) Get(id string) (*models.ProjectTemplate, error) {
	var t models.ProjectTemplate
	if err := s.DB.First(&t, "id = ?", id).Error; err != nil {
		return nil, notFoundf("模板 %s 不存在", id)
	}
	return &t, nil
}

// List 搜索 + 分类过滤。query 对 name/purpose/shortDescription/category
// 做大小写不敏感的子串匹配；category 精确匹配
func (s *TemplateService) List(query, category string) ([]models.ProjectTemplate, error) {
	var all []models.ProjectTemplate
	if err := s.DB.Order("created_at").Find(&all).Error; err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.ProjectTemplate, 0, len(all))
	for _, t := range all {
		if category != "" && t.Category != category {
			continue
		}
		if q != "" && !matchesQuery(t, q) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func matchesQuery(t models.ProjectTemplate, q string) bool {
	for _, field := range []string{t.Name, t.Purpose, t.ShortDescription, t.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (s *TemplateService) Update(id string, apply func(*models.ProjectTemplate)) (*models.ProjectTemplate, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	apply(t)
	t.UpdatedAt = time.Now()
	if err := s.DB.Save(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Delete(id string) error {
	res := s.DB.Delete(&models.ProjectTemplate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("模板 %s 不存在", id)
	}
	return nil
}

func (s *TemplateService) Duplicate(id string, now time.Time) (*models.ProjectTemplate, error) {
	src, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	copy := *src
	copy.ID = models.NewTemplateID()
	copy.Name = src.Name + " (Copy)"
	copy.ImageParameters = append([]models.TemplateParameter(nil), src.ImageParameters...)
	copy.VideoParameters = append([]models.TemplateParameter(nil), src.VideoParameters...)
	copy.CreatedAt = now
	copy.UpdatedAt = now
	if err := s.DB.Create(&copy).Error; err != nil {
		return nil, err
	}
	return &copy, nil
}

// TemplateWizard 四步创建向导：基础信息 → 内容提示词 → 图片参数 → 视频参数。
// 草稿逐步累积，最后一步提交时才落库
type TemplateWizard struct {
	Draft models.ProjectTemplate
	Step  int
}

func NewTemplateWizard() *TemplateWizard {
	return &TemplateWizard{
		Draft: models.ProjectTemplate{Category: "E-commerce", IsActive: true},
		Step:  1,
	}
}

// SetBasicInfo 第一步
func (w *TemplateWizard) SetBasicInfo(name, purpose, shortDescription, category string) {
	w.Draft.Name = name
	w.Draft.Purpose = purpose
	w.Draft.ShortDescription = shortDescription
	if category != "" {
		w.Draft.Category = category
	}
	w.Step = 2
}

// SetContentPrompt 第二步
func (w *TemplateWizard) SetContentPrompt(prompt string) {
	w.Draft.ContentPrompt = prompt
	w.Step = 3
}

// SetImageParameters 第三步
func (w *TemplateWizard) SetImageParameters(params []models.TemplateParameter) {
	w.Draft.ImageParameters = params
	w.Step = 4
}

// SetVideoParameters 第四步
func (w *TemplateWizard) SetVideoParameters(params []models.TemplateParameter) {
	w.Draft.VideoParameters = params
}

// Commit 最后一步提交。名称与分类为必填
func (w *TemplateWizard) Commit(s *TemplateService, now time.Time) (*models.ProjectTemplate, error) {
	if strings.TrimSpace(w.Draft.Name) == "" {
		return nil, validationf("模板名称不能为空")
	}
	if strings.TrimSpace(w.Draft.Category) == "" {
		return nil, validationf("模板分类不能为空")
	}
	t := w.Draft
	t.ID = models.NewTemplateID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.ImageParameters == nil {
		t.ImageParameters = []models.TemplateParameter{}
	}
	if t.VideoParameters == nil {
		t.VideoParameters = []models.TemplateParameter{}
	}
	if err := s.DB.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
