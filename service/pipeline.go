package service

import (
	"sort"
	"time"

	"ContentCreator-server/models"
)

// 最终合成时每个分镜的固定时长（秒）
const FinalPerShotSeconds = 3.0

// 产品图 / 参考图各自的上限
const MaxStageImages = 10

// Pipeline 单个视频的五阶段状态机。所有操作都是值进值出：
// 成功返回新快照，失败时聚合保持原样，不存在部分提交
type Pipeline struct {
	Video        models.Video
	CurrentStage int
}

func NewPipeline(v models.Video) *Pipeline {
	return &Pipeline{Video: v.Clone(), CurrentStage: 1}
}

// Snapshot 当前聚合的深拷贝
func (p *Pipeline) Snapshot() models.Video {
	return p.Video.Clone()
}

// GoToStage 阶段选择器允许直接跳转任意阶段
func (p *Pipeline) GoToStage(n int) error {
	if n < 1 || n > 5 {
		return validationf("阶段号必须在 1-5 之间: %d", n)
	}
	p.CurrentStage = n
	return nil
}

// GenerateShots Stage1→Stage2 的守卫转移：名称、内容提示词非空且分镜数≥1。
// 不满足时拒绝且不修改状态；重复调用只是再次进入 Stage2
func (p *Pipeline) GenerateShots() error {
	if err := CheckStage1Guard(p.Video); err != nil {
		return err
	}
	p.CurrentStage = 2
	return nil
}

// ProceedToImages Stage2→Stage3，无条件（允许空故事板）
func (p *Pipeline) ProceedToImages() {
	p.CurrentStage = 3
}

// ProceedToVideos Stage3→Stage4，无条件
func (p *Pipeline) ProceedToVideos() {
	p.CurrentStage = 4
}

// ProceedToAssembly Stage4→Stage5，查看不设门槛，门槛在合成动作上
func (p *Pipeline) ProceedToAssembly() {
	p.CurrentStage = 5
}

// CheckStage1Guard Stage1 前置条件校验
func CheckStage1Guard(v models.Video) error {
	if v.Name == "" {
		return validationf("视频名称不能为空")
	}
	if v.Stage1.ContentPrompt == "" {
		return validationf("内容提示词不能为空")
	}
	if v.Stage1.NumShots < 1 {
		return validationf("分镜数必须≥1: %d", v.Stage1.NumShots)
	}
	return nil
}

// ---------- Stage 1：视频配置 ----------

func SetVideoName(v models.Video, name string, now time.Time) models.Video {
	out := v.Clone()
	out.Name = name
	out.Modified = now
	return out
}

func SetVideoDescription(v models.Video, desc string, now time.Time) models.Video {
	out := v.Clone()
	out.Description = desc
	out.Modified = now
	return out
}

// SetNumShots 显式拒绝非法值而非静默钳制。
// 缩减分镜数时级联裁剪超出新槽位范围的分镜及其下游记录，
// 与删除分镜同一条不留孤儿的规则
func SetNumShots(v models.Video, n int, now time.Time) (models.Video, error) {
	if n < 1 {
		return v, validationf("分镜数必须≥1: %d", n)
	}
	out := v.Clone()
	out.Stage1.NumShots = n
	trimBeyondSlot(&out, n)
	out.Modified = now
	return out, nil
}

// trimBeyondSlot 丢弃槽位号大于 max 的分镜与 Stage3/4/5 记录
func trimBeyondSlot(v *models.Video, max int) {
	shots := v.Stage2.Shots[:0]
	for _, s := range v.Stage2.Shots {
		if s.Number <= max {
			shots = append(shots, s)
		}
	}
	v.Stage2.Shots = shots

	images := v.Stage3.GeneratedImages[:0]
	for _, g := range v.Stage3.GeneratedImages {
		if g.ShotNumber <= max {
			images = append(images, g)
		}
	}
	v.Stage3.GeneratedImages = images

	videos := v.Stage4.GeneratedVideos[:0]
	for _, g := range v.Stage4.GeneratedVideos {
		if g.ShotNumber <= max {
			videos = append(videos, g)
		}
	}
	v.Stage4.GeneratedVideos = videos

	prompts := v.Stage4.VideoPrompts[:0]
	for _, p := range v.Stage4.VideoPrompts {
		if p.ShotNumber <= max {
			prompts = append(prompts, p)
		}
	}
	v.Stage4.VideoPrompts = prompts

	edited := v.Stage5.EditedVideos[:0]
	for _, e := range v.Stage5.EditedVideos {
		if e.ShotNumber <= max {
			edited = append(edited, e)
		}
	}
	v.Stage5.EditedVideos = edited
}

func SetDurationPerShot(v models.Video, seconds float64, now time.Time) (models.Video, error) {
	if seconds <= 0 {
		return v, validationf("单镜时长必须>0: %v", seconds)
	}
	out := v.Clone()
	out.Stage1.DurationPerShot = seconds
	out.Modified = now
	return out, nil
}

func SetContentPrompt(v models.Video, prompt string, now time.Time) models.Video {
	out := v.Clone()
	out.Stage1.ContentPrompt = prompt
	out.Modified = now
	return out
}

// AddProductImage 产品图上限 10 张
func AddProductImage(v models.Video, url string, now time.Time) (models.Video, error) {
	if len(v.Stage1.ProductImages) >= MaxStageImages {
		return v, validationf("产品图最多 %d 张", MaxStageImages)
	}
	out := v.Clone()
	out.Stage1.ProductImages = append(out.Stage1.ProductImages, url)
	out.Modified = now
	return out, nil
}

func RemoveProductImage(v models.Video, index int, now time.Time) (models.Video, error) {
	if index < 0 || index >= len(v.Stage1.ProductImages) {
		return v, notFoundf("产品图下标越界: %d", index)
	}
	out := v.Clone()
	out.Stage1.ProductImages = append(out.Stage1.ProductImages[:index], out.Stage1.ProductImages[index+1:]...)
	out.Modified = now
	return out, nil
}

func AddReferenceImage(v models.Video, url string, now time.Time) (models.Video, error) {
	if len(v.Stage1.ReferenceImages) >= MaxStageImages {
		return v, validationf("参考图最多 %d 张", MaxStageImages)
	}
	out := v.Clone()
	out.Stage1.ReferenceImages = append(out.Stage1.ReferenceImages, url)
	out.Modified = now
	return out, nil
}

func RemoveReferenceImage(v models.Video, index int, now time.Time) (models.Video, error) {
	if index < 0 || index >= len(v.Stage1.ReferenceImages) {
		return v, notFoundf("参考图下标越界: %d", index)
	}
	out := v.Clone()
	out.Stage1.ReferenceImages = append(out.Stage1.ReferenceImages[:index], out.Stage1.ReferenceImages[index+1:]...)
	out.Modified = now
	return out, nil
}

// AddImageParameter 追加默认参数 {key:"newParam", type:"text", value:""}
func AddImageParameter(v models.Video, now time.Time) models.Video {
	out := v.Clone()
	out.Stage1.ImageParameters = append(out.Stage1.ImageParameters, models.NewParameter())
	out.Modified = now
	return out
}

// UpdateImageParameter 按下标整体替换
func UpdateImageParameter(v models.Video, index int, p models.Parameter, now time.Time) (models.Video, error) {
	if index < 0 || index >= len(v.Stage1.ImageParameters) {
		return v, notFoundf("参数下标越界: %d", index)
	}
	if err := p.Validate(); err != nil {
		return v, validationf("%v", err)
	}
	out := v.Clone()
	out.Stage1.ImageParameters[index] = p.Clone()
	out.Modified = now
	return out, nil
}

func RemoveImageParameter(v models.Video, index int, now time.Time) (models.Video, error) {
	if index < 0 || index >= len(v.Stage1.ImageParameters) {
		return v, notFoundf("参数下标越界: %d", index)
	}
	out := v.Clone()
	out.Stage1.ImageParameters = append(out.Stage1.ImageParameters[:index], out.Stage1.ImageParameters[index+1:]...)
	out.Modified = now
	return out, nil
}

// ---------- Stage 2：故事板 ----------

// StoryboardRows 读取 numShots 个分镜槽位：已落库的分镜按编号归位，
// 缺口以 pending 占位行合成，占位行在用户编辑前不落库
func StoryboardRows(v models.Video) []models.Shot {
	rows := make([]models.Shot, 0, v.Stage1.NumShots)
	for n := 1; n <= v.Stage1.NumShots; n++ {
		if s, ok := findShot(v.Stage2.Shots, n); ok {
			rows = append(rows, s.Clone())
		} else {
			rows = append(rows, models.PlaceholderShot(n))
		}
	}
	return rows
}

func findShot(shots []models.Shot, number int) (models.Shot, bool) {
	for _, s := range shots {
		if s.Number == number {
			return s, true
		}
	}
	return models.Shot{}, false
}

// materializeShot 编辑时才把占位槽位物化，编号即槽位号，保持有序
func materializeShot(v *models.Video, number int) *models.Shot {
	for i := range v.Stage2.Shots {
		if v.Stage2.Shots[i].Number == number {
			return &v.Stage2.Shots[i]
		}
	}
	v.Stage2.Shots = append(v.Stage2.Shots, models.PlaceholderShot(number))
	sort.Slice(v.Stage2.Shots, func(i, j int) bool {
		return v.Stage2.Shots[i].Number < v.Stage2.Shots[j].Number
	})
	for i := range v.Stage2.Shots {
		if v.Stage2.Shots[i].Number == number {
			return &v.Stage2.Shots[i]
		}
	}
	return nil
}

func checkSlot(v models.Video, number int) error {
	if number < 1 || number > v.Stage1.NumShots {
		return notFoundf("分镜槽位越界: %d (共 %d)", number, v.Stage1.NumShots)
	}
	return nil
}

func UpdateShotDescription(v models.Video, number int, desc string, now time.Time) (models.Video, error) {
	if err := checkSlot(v, number); err != nil {
		return v, err
	}
	out := v.Clone()
	materializeShot(&out, number).Description = desc
	out.Modified = now
	return out, nil
}

func UpdateShotImagePrompt(v models.Video, number int, prompt string, now time.Time) (models.Video, error) {
	if err := checkSlot(v, number); err != nil {
		return v, err
	}
	out := v.Clone()
	materializeShot(&out, number).ImagePrompt = prompt
	out.Modified = now
	return out, nil
}

// UploadShotImage 手动上传，跳过生成，状态置为 uploaded
func UploadShotImage(v models.Video, number int, url string, now time.Time) (models.Video, error) {
	if err := checkSlot(v, number); err != nil {
		return v, err
	}
	out := v.Clone()
	s := materializeShot(&out, number)
	s.Status = models.ShotStatusUploaded
	s.GeneratedImageUrl = url
	out.Modified = now
	return out, nil
}

// SetShotParameter 按 key 新增或覆盖分镜参数（key 在分镜内唯一）
func SetShotParameter(v models.Video, number int, p models.Parameter, now time.Time) (models.Video, error) {
	if err := checkSlot(v, number); err != nil {
		return v, err
	}
	if p.Key == "" {
		return v, validationf("参数 key 不能为空")
	}
	if err := p.Validate(); err != nil {
		return v, validationf("%v", err)
	}
	out := v.Clone()
	s := materializeShot(&out, number)
	replaced := false
	for i := range s.Parameters {
		if s.Parameters[i].Key == p.Key {
			s.Parameters[i] = p.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		s.Parameters = append(s.Parameters, p.Clone())
	}
	out.Modified = now
	return out, nil
}

func DeleteShotParameter(v models.Video, number int, key string, now time.Time) (models.Video, error) {
	if err := checkSlot(v, number); err != nil {
		return v, err
	}
	s, ok := findShot(v.Stage2.Shots, number)
	if !ok {
		return v, notFoundf("分镜 %d 尚未物化", number)
	}
	idx := -1
	for i, p := range s.Parameters {
		if p.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return v, notFoundf("分镜 %d 无参数 %q", number, key)
	}
	out := v.Clone()
	os := materializeShot(&out, number)
	os.Parameters = append(os.Parameters[:idx], os.Parameters[idx+1:]...)
	out.Modified = now
	return out, nil
}

// DeleteShot 删除物化分镜。槽位编号不变（该槽位回到占位状态），
// 同时级联清理 Stage3/4/5 中以该 shotNumber 为键的记录，避免孤儿
func DeleteShot(v models.Video, number int, now time.Time) (models.Video, error) {
	idx := -1
	for i, s := range v.Stage2.Shots {
		if s.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return v, notFoundf("分镜 %d 不存在", number)
	}
	out := v.Clone()
	out.Stage2.Shots = append(out.Stage2.Shots[:idx], out.Stage2.Shots[idx+1:]...)
	out.Stage3.GeneratedImages = dropImage(out.Stage3.GeneratedImages, number)
	out.Stage4.GeneratedVideos = dropVideoRec(out.Stage4.GeneratedVideos, number)
	out.Stage4.VideoPrompts = dropPrompt(out.Stage4.VideoPrompts, number)
	out.Stage5.EditedVideos = dropEdited(out.Stage5.EditedVideos, number)
	out.Modified = now
	return out, nil
}

// AddComment 追加故事板批注（不透明对象）
func AddComment(v models.Video, comment models.JSONMap, now time.Time) models.Video {
	out := v.Clone()
	out.Stage2.Comments = append(out.Stage2.Comments, comment.Clone())
	out.Modified = now
	return out
}

// ---------- Stage 3：图片生成 ----------

// ApplyGeneratedImage 按 shotNumber upsert，同键记录至多一条。
// 对应分镜同步标记为 generated 并回填图片地址
func ApplyGeneratedImage(v models.Video, img models.GeneratedImage, now time.Time) (models.Video, error) {
	if err := checkSlot(v, img.ShotNumber); err != nil {
		return v, err
	}
	out := v.Clone()
	replaced := false
	for i := range out.Stage3.GeneratedImages {
		if out.Stage3.GeneratedImages[i].ShotNumber == img.ShotNumber {
			out.Stage3.GeneratedImages[i] = img.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		out.Stage3.GeneratedImages = append(out.Stage3.GeneratedImages, img.Clone())
	}
	s := materializeShot(&out, img.ShotNumber)
	s.Status = models.ShotStatusGenerated
	s.GeneratedImageUrl = img.Url
	out.Modified = now
	return out, nil
}

// UpdateGeneratedImage 就地修改单条记录的提示词与参数
func UpdateGeneratedImage(v models.Video, shotNumber int, prompt string, params models.JSONMap, now time.Time) (models.Video, error) {
	out := v.Clone()
	for i := range out.Stage3.GeneratedImages {
		if out.Stage3.GeneratedImages[i].ShotNumber == shotNumber {
			out.Stage3.GeneratedImages[i].Prompt = prompt
			out.Stage3.GeneratedImages[i].Parameters = params.Clone()
			out.Modified = now
			return out, nil
		}
	}
	return v, notFoundf("分镜 %d 无生成图记录", shotNumber)
}

func DeleteGeneratedImage(v models.Video, shotNumber int, now time.Time) (models.Video, error) {
	for _, g := range v.Stage3.GeneratedImages {
		if g.ShotNumber == shotNumber {
			out := v.Clone()
			out.Stage3.GeneratedImages = dropImage(out.Stage3.GeneratedImages, shotNumber)
			out.Modified = now
			return out, nil
		}
	}
	return v, notFoundf("分镜 %d 无生成图记录", shotNumber)
}

// ---------- Stage 4：视频生成 ----------

// ApplyGeneratedVideo 按 shotNumber upsert；不依赖 Stage3 是否完成
func ApplyGeneratedVideo(v models.Video, gv models.GeneratedVideo, now time.Time) (models.Video, error) {
	if err := checkSlot(v, gv.ShotNumber); err != nil {
		return v, err
	}
	out := v.Clone()
	replaced := false
	for i := range out.Stage4.GeneratedVideos {
		if out.Stage4.GeneratedVideos[i].ShotNumber == gv.ShotNumber {
			out.Stage4.GeneratedVideos[i] = gv
			replaced = true
			break
		}
	}
	if !replaced {
		out.Stage4.GeneratedVideos = append(out.Stage4.GeneratedVideos, gv)
	}
	out.Modified = now
	return out, nil
}

// SetVideoPrompt 按 shotNumber upsert 视频提示词
func SetVideoPrompt(v models.Video, shotNumber int, prompt models.JSONMap, now time.Time) (models.Video, error) {
	if err := checkSlot(v, shotNumber); err != nil {
		return v, err
	}
	out := v.Clone()
	replaced := false
	for i := range out.Stage4.VideoPrompts {
		if out.Stage4.VideoPrompts[i].ShotNumber == shotNumber {
			out.Stage4.VideoPrompts[i].JSON = prompt.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		out.Stage4.VideoPrompts = append(out.Stage4.VideoPrompts, models.VideoPrompt{ShotNumber: shotNumber, JSON: prompt.Clone()})
	}
	out.Modified = now
	return out, nil
}

// ---------- Stage 5：剪辑与最终合成 ----------

// defaultEdits 未指定剪辑项时的默认标签
var defaultEdits = []string{"Color corrected", "Audio enhanced", "Transitions added"}

// ApplyEditedVideo 按 shotNumber upsert 剪辑结果
func ApplyEditedVideo(v models.Video, shotNumber int, url string, edits []string, now time.Time) (models.Video, error) {
	if err := checkSlot(v, shotNumber); err != nil {
		return v, err
	}
	if edits == nil {
		edits = defaultEdits
	}
	rec := models.EditedVideo{
		ShotNumber: shotNumber,
		Url:        url,
		EditedAt:   models.ISO8601(now),
		Edits:      append([]string(nil), edits...),
	}
	out := v.Clone()
	replaced := false
	for i := range out.Stage5.EditedVideos {
		if out.Stage5.EditedVideos[i].ShotNumber == shotNumber {
			out.Stage5.EditedVideos[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		out.Stage5.EditedVideos = append(out.Stage5.EditedVideos, rec)
	}
	out.Modified = now
	return out, nil
}

// AssembleFinalVideo 合成最终视频。editedVideos 为空时拒绝且不修改状态；
// 已有 finalVideo 时再次调用为覆盖（重新生成）
func AssembleFinalVideo(v models.Video, url, quality string, now time.Time) (models.Video, error) {
	if len(v.Stage5.EditedVideos) == 0 {
		return v, preconditionf("至少需要一条剪辑视频才能合成")
	}
	shots := make([]int, 0, len(v.Stage5.EditedVideos))
	for _, e := range v.Stage5.EditedVideos {
		shots = append(shots, e.ShotNumber)
	}
	sort.Ints(shots)
	out := v.Clone()
	out.Stage5.FinalVideo = &models.FinalVideo{
		Url:           url,
		GeneratedAt:   models.ISO8601(now),
		Quality:       quality,
		Duration:      float64(len(shots)) * FinalPerShotSeconds,
		ShotsIncluded: shots,
	}
	out.Modified = now
	return out, nil
}

// ---------- 进度 ----------

// StageProgress 0-100，按五个阶段是否有产出计算
func StageProgress(v models.Video) int {
	completed := 0
	if v.Stage1.ContentPrompt != "" {
		completed++
	}
	if len(v.Stage2.Shots) > 0 {
		completed++
	}
	if len(v.Stage3.GeneratedImages) > 0 {
		completed++
	}
	if len(v.Stage4.GeneratedVideos) > 0 {
		completed++
	}
	if v.Stage5.FinalVideo != nil {
		completed++
	}
	return completed * 100 / 5
}

func dropImage(in []models.GeneratedImage, shotNumber int) []models.GeneratedImage {
	out := in[:0]
	for _, g := range in {
		if g.ShotNumber != shotNumber {
			out = append(out, g)
		}
	}
	return out
}

func dropVideoRec(in []models.GeneratedVideo, shotNumber int) []models.GeneratedVideo {
	out := in[:0]
	for _, g := range in {
		if g.ShotNumber != shotNumber {
			out = append(out, g)
		}
	}
	return out
}

func dropPrompt(in []models.VideoPrompt, shotNumber int) []models.VideoPrompt {
	out := in[:0]
	for _, p := range in {
		if p.ShotNumber != shotNumber {
			out = append(out, p)
		}
	}
	return out
}

func dropEdited(in []models.EditedVideo, shotNumber int) []models.EditedVideo {
	out := in[:0]
	for _, e := range in {
		if e.ShotNumber != shotNumber {
			out = append(out, e)
		}
	}
	return out
}
