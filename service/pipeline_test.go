package service

import (
	"testing"
	"time"

	"ContentCreator-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestVideo(t *testing.T) models.Video {
	t.Helper()
	v := models.NewVideo("PRJ-test", "测试视频", testTime)
	v.Stage1.ContentPrompt = "a cinematic product video"
	return v
}

func TestNewVideoInitializesAllStages(t *testing.T) {
	v := models.NewVideo("PRJ-test", "v1", testTime)

	assert.NotNil(t, v.Stage1.ProductImages)
	assert.NotNil(t, v.Stage1.ReferenceImages)
	assert.NotNil(t, v.Stage1.ImageParameters)
	assert.NotNil(t, v.Stage2.Shots)
	assert.NotNil(t, v.Stage2.Comments)
	assert.NotNil(t, v.Stage3.GeneratedImages)
	assert.NotNil(t, v.Stage4.VideoPrompts)
	assert.NotNil(t, v.Stage4.GeneratedVideos)
	assert.NotNil(t, v.Stage5.EditedVideos)
	assert.Nil(t, v.Stage5.FinalVideo)

	assert.Equal(t, 8, v.Stage1.NumShots)
	assert.Equal(t, 8.0, v.Stage1.DurationPerShot)
	assert.Equal(t, v.Created, v.Modified)
}

func TestStage1GuardAllBoundaryCombinations(t *testing.T) {
	cases := []struct {
		name          string
		videoName     string
		contentPrompt string
		numShots      int
		wantOK        bool
	}{
		{"all valid", "v", "p", 1, true},
		{"empty name", "", "p", 1, false},
		{"empty prompt", "v", "", 1, false},
		{"zero shots", "v", "p", 0, false},
		{"empty name and prompt", "", "", 1, false},
		{"empty name zero shots", "", "p", 0, false},
		{"empty prompt zero shots", "v", "", 0, false},
		{"all invalid", "", "", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := models.NewVideo("PRJ-test", tc.videoName, testTime)
			v.Stage1.ContentPrompt = tc.contentPrompt
			v.Stage1.NumShots = tc.numShots

			p := NewPipeline(v)
			err := p.GenerateShots()
			if tc.wantOK {
				require.NoError(t, err)
				assert.Equal(t, 2, p.CurrentStage)
			} else {
				require.ErrorIs(t, err, ErrValidation)
				assert.Equal(t, 1, p.CurrentStage)
			}
		})
	}
}

func TestGenerateShotsIsIdempotent(t *testing.T) {
	p := NewPipeline(newTestVideo(t))
	require.NoError(t, p.GenerateShots())
	before := p.Snapshot()
	require.NoError(t, p.GenerateShots())
	assert.Equal(t, 2, p.CurrentStage)
	assert.Equal(t, before, p.Snapshot())
}

func TestGoToStageBounds(t *testing.T) {
	p := NewPipeline(newTestVideo(t))
	require.NoError(t, p.GoToStage(5))
	assert.Equal(t, 5, p.CurrentStage)
	require.ErrorIs(t, p.GoToStage(0), ErrValidation)
	require.ErrorIs(t, p.GoToStage(6), ErrValidation)
	assert.Equal(t, 5, p.CurrentStage)
}

func TestSetNumShotsRejectsInvalid(t *testing.T) {
	v := newTestVideo(t)
	_, err := SetNumShots(v, 0, testTime)
	require.ErrorIs(t, err, ErrValidation)
	_, err = SetNumShots(v, -3, testTime)
	require.ErrorIs(t, err, ErrValidation)

	out, err := SetNumShots(v, 12, testTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 12, out.Stage1.NumShots)
	assert.Equal(t, 8, v.Stage1.NumShots, "输入快照不应被修改")
}

func TestSetNumShotsReductionTrimsDownstream(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 4
	var err error
	for n := 1; n <= 4; n++ {
		v, err = UpdateShotDescription(v, n, "shot", testTime)
		require.NoError(t, err)
		v, err = ApplyGeneratedImage(v, models.GeneratedImage{ShotNumber: n, Url: "img"}, testTime)
		require.NoError(t, err)
		v, err = ApplyGeneratedVideo(v, models.GeneratedVideo{ShotNumber: n, Url: "vid"}, testTime)
		require.NoError(t, err)
		v, err = SetVideoPrompt(v, n, models.JSONMap{"motion": "pan"}, testTime)
		require.NoError(t, err)
		v, err = ApplyEditedVideo(v, n, "edit", nil, testTime)
		require.NoError(t, err)
	}

	out, err := SetNumShots(v, 2, testTime)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, shotNumbers(out.Stage2.Shots))
	assert.Equal(t, []int{1, 2}, imageShotNumbers(out.Stage3.GeneratedImages))
	assert.Equal(t, []int{1, 2}, videoShotNumbers(out.Stage4.GeneratedVideos))
	require.Len(t, out.Stage4.VideoPrompts, 2)
	assert.Equal(t, []int{1, 2}, editedShotNumbers(out.Stage5.EditedVideos))
	assert.Len(t, v.Stage2.Shots, 4, "输入快照不受裁剪影响")

	// 被裁掉的分镜不会再出现在最终合成里
	out, err = AssembleFinalVideo(out, "final.mp4", "1080p", testTime)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out.Stage5.FinalVideo.ShotsIncluded)
	assert.Equal(t, 2*FinalPerShotSeconds, out.Stage5.FinalVideo.Duration)
}

func TestProductImageLimit(t *testing.T) {
	v := newTestVideo(t)
	var err error
	for i := 0; i < MaxStageImages; i++ {
		v, err = AddProductImage(v, "https://files.example.com/p.png", testTime)
		require.NoError(t, err)
	}
	_, err = AddProductImage(v, "https://files.example.com/p11.png", testTime)
	require.ErrorIs(t, err, ErrValidation)
	assert.Len(t, v.Stage1.ProductImages, MaxStageImages)
}

func TestImageParameterLifecycle(t *testing.T) {
	v := newTestVideo(t)
	v = AddImageParameter(v, testTime)
	require.Len(t, v.Stage1.ImageParameters, 1)
	assert.Equal(t, models.Parameter{Key: "newParam", Type: models.ParamText, Value: ""}, v.Stage1.ImageParameters[0])

	v, err := UpdateImageParameter(v, 0, models.DropdownParam("lighting", "studio", []string{"studio", "natural"}), testTime)
	require.NoError(t, err)
	assert.Equal(t, "lighting", v.Stage1.ImageParameters[0].Key)

	// dropdown 取值必须在选项内
	_, err = UpdateImageParameter(v, 0, models.DropdownParam("lighting", "neon", []string{"studio", "natural"}), testTime)
	require.ErrorIs(t, err, ErrValidation)

	_, err = UpdateImageParameter(v, 5, models.TextParam("x", "y"), testTime)
	require.ErrorIs(t, err, ErrNotFound)

	v, err = RemoveImageParameter(v, 0, testTime)
	require.NoError(t, err)
	assert.Empty(t, v.Stage1.ImageParameters)
}

func TestStoryboardSparseThenDensify(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 3

	// 编辑前：三个合成占位行，全部 pending，不落库
	rows := StoryboardRows(v)
	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.Equal(t, i+1, r.Number)
		assert.Equal(t, models.ShotStatusPending, r.Status)
		assert.Empty(t, r.Description)
	}
	assert.Empty(t, v.Stage2.Shots, "占位行不应写回")

	// 编辑 2 号槽位：只物化这一个分镜
	v, err := UpdateShotDescription(v, 2, "X", testTime)
	require.NoError(t, err)
	require.Len(t, v.Stage2.Shots, 1)
	assert.Equal(t, 2, v.Stage2.Shots[0].Number)
	assert.Equal(t, "X", v.Stage2.Shots[0].Description)
	assert.Equal(t, models.ShotStatusPending, v.Stage2.Shots[0].Status)

	// 再读：1、3 号仍是占位行
	rows = StoryboardRows(v)
	require.Len(t, rows, 3)
	assert.Equal(t, "X", rows[1].Description)
	assert.Empty(t, rows[0].Description)
	assert.Empty(t, rows[2].Description)
}

func TestUpdateShotOutOfRange(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 3
	_, err := UpdateShotDescription(v, 4, "X", testTime)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = UpdateShotDescription(v, 0, "X", testTime)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUploadShotImage(t *testing.T) {
	v := newTestVideo(t)
	v, err := UploadShotImage(v, 1, "blob:local-1", testTime)
	require.NoError(t, err)
	s := v.Stage2.Shots[0]
	assert.Equal(t, models.ShotStatusUploaded, s.Status)
	assert.Equal(t, "blob:local-1", s.GeneratedImageUrl)
}

func TestShotParametersByKey(t *testing.T) {
	v := newTestVideo(t)
	v, err := SetShotParameter(v, 1, models.TextParam("mood", "warm"), testTime)
	require.NoError(t, err)
	v, err = SetShotParameter(v, 1, models.TextParam("angle", "low"), testTime)
	require.NoError(t, err)

	// 同 key 覆盖而不是追加
	v, err = SetShotParameter(v, 1, models.TextParam("mood", "cold"), testTime)
	require.NoError(t, err)
	s, _ := findShot(v.Stage2.Shots, 1)
	require.Len(t, s.Parameters, 2)
	assert.Equal(t, "cold", s.Parameters[0].Value)

	_, err = SetShotParameter(v, 1, models.TextParam("", "x"), testTime)
	require.ErrorIs(t, err, ErrValidation)

	v, err = DeleteShotParameter(v, 1, "mood", testTime)
	require.NoError(t, err)
	s, _ = findShot(v.Stage2.Shots, 1)
	require.Len(t, s.Parameters, 1)
	assert.Equal(t, "angle", s.Parameters[0].Key)

	_, err = DeleteShotParameter(v, 1, "missing", testTime)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteShotRemovesExactlyOneAndKeepsOrder(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 4
	var err error
	for n := 1; n <= 4; n++ {
		v, err = UpdateShotDescription(v, n, "shot", testTime)
		require.NoError(t, err)
	}

	v, err = DeleteShot(v, 2, testTime)
	require.NoError(t, err)
	require.Len(t, v.Stage2.Shots, 3)
	assert.Equal(t, []int{1, 3, 4}, shotNumbers(v.Stage2.Shots), "其余分镜相对顺序不变，编号不重排")

	_, err = DeleteShot(v, 2, testTime)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteShotCascadesDownstreamRecords(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 3
	var err error
	for n := 1; n <= 3; n++ {
		v, err = UpdateShotDescription(v, n, "shot", testTime)
		require.NoError(t, err)
		v, err = ApplyGeneratedImage(v, models.GeneratedImage{ShotNumber: n, Url: "img"}, testTime)
		require.NoError(t, err)
		v, err = ApplyGeneratedVideo(v, models.GeneratedVideo{ShotNumber: n, Url: "vid"}, testTime)
		require.NoError(t, err)
		v, err = ApplyEditedVideo(v, n, "edit", nil, testTime)
		require.NoError(t, err)
	}

	v, err = DeleteShot(v, 2, testTime)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, imageShotNumbers(v.Stage3.GeneratedImages))
	assert.Equal(t, []int{1, 3}, videoShotNumbers(v.Stage4.GeneratedVideos))
	assert.Equal(t, []int{1, 3}, editedShotNumbers(v.Stage5.EditedVideos))
}

func TestGeneratedImageUpsertByShotNumber(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 3
	var err error

	for i := 0; i < 5; i++ {
		v, err = ApplyGeneratedImage(v, models.GeneratedImage{ShotNumber: 2, Url: "img-v2"}, testTime)
		require.NoError(t, err)
	}
	require.Len(t, v.Stage3.GeneratedImages, 1, "同 shotNumber 至多一条记录")
	assert.Equal(t, 2, v.Stage3.GeneratedImages[0].ShotNumber)

	s, ok := findShot(v.Stage2.Shots, 2)
	require.True(t, ok)
	assert.Equal(t, models.ShotStatusGenerated, s.Status)
	assert.Equal(t, "img-v2", s.GeneratedImageUrl)

	_, err = ApplyGeneratedImage(v, models.GeneratedImage{ShotNumber: 9, Url: "img"}, testTime)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegenerateSubsetLeavesOthersUntouched(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 3
	var err error
	for n := 1; n <= 3; n++ {
		v, err = ApplyGeneratedImage(v, models.GeneratedImage{
			ShotNumber: n,
			Url:        "original",
			CreatedAt:  "2025-01-01T00:00:00Z",
		}, testTime)
		require.NoError(t, err)
	}

	before1 := v.Stage3.GeneratedImages[0]
	before3 := v.Stage3.GeneratedImages[2]

	v, err = ApplyGeneratedImage(v, models.GeneratedImage{
		ShotNumber: 2,
		Url:        "regenerated",
		CreatedAt:  "2025-06-01T00:00:00Z",
	}, testTime)
	require.NoError(t, err)

	assert.Equal(t, before1, v.Stage3.GeneratedImages[0], "非选中记录必须逐字节不变")
	assert.Equal(t, before3, v.Stage3.GeneratedImages[2])
	assert.Equal(t, "regenerated", v.Stage3.GeneratedImages[1].Url)
}

func TestUpdateAndDeleteGeneratedImage(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 2
	v, err := ApplyGeneratedImage(v, models.GeneratedImage{ShotNumber: 1, Url: "img"}, testTime)
	require.NoError(t, err)

	v, err = UpdateGeneratedImage(v, 1, "new prompt", models.JSONMap{"style": "noir"}, testTime)
	require.NoError(t, err)
	assert.Equal(t, "new prompt", v.Stage3.GeneratedImages[0].Prompt)
	assert.Equal(t, "noir", v.Stage3.GeneratedImages[0].Parameters["style"])

	_, err = UpdateGeneratedImage(v, 2, "p", nil, testTime)
	require.ErrorIs(t, err, ErrNotFound)

	v, err = DeleteGeneratedImage(v, 1, testTime)
	require.NoError(t, err)
	assert.Empty(t, v.Stage3.GeneratedImages)

	_, err = DeleteGeneratedImage(v, 1, testTime)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGeneratedVideoIndependentOfStage3(t *testing.T) {
	v := newTestVideo(t)
	v.Stage1.NumShots = 2

	// 没有生成图也允许生成视频
	v, err := ApplyGeneratedVideo(v, models.GeneratedVideo{ShotNumber: 2, Url: "vid-a"}, testTime)
	require.NoError(t, err)
	v, err = ApplyGeneratedVideo(v, models.GeneratedVideo{ShotNumber: 2, Url: "vid-b"}, testTime)
	require.NoError(t, err)
	require.Len(t, v.Stage4.GeneratedVideos, 1)
	assert.Equal(t, "vid-b", v.Stage4.GeneratedVideos[0].Url)
}

func TestVideoPromptUpsert(t *testing.T) {
	v := newTestVideo(t)
	v, err := SetVideoPrompt(v, 1, models.JSONMap{"motion": "pan"}, testTime)
	require.NoError(t, err)
	v, err = SetVideoPrompt(v, 1, models.JSONMap{"motion": "zoom"}, testTime)
	require.NoError(t, err)
	require.Len(t, v.Stage4.VideoPrompts, 1)
	assert.Equal(t, "zoom", v.Stage4.VideoPrompts[0].JSON["motion"])
}

func TestEditedVideoUpsertAndDefaultEdits(t *testing.T) {
	v := newTestVideo(t)
	v, err := ApplyEditedVideo(v, 1, "edit-a", nil, testTime)
	require.NoError(t, err)
	assert.Equal(t, []string{"Color corrected", "Audio enhanced", "Transitions added"}, v.Stage5.EditedVideos[0].Edits)

	v, err = ApplyEditedVideo(v, 1, "edit-b", []string{"Stabilized"}, testTime)
	require.NoError(t, err)
	require.Len(t, v.Stage5.EditedVideos, 1)
	assert.Equal(t, "edit-b", v.Stage5.EditedVideos[0].Url)
	assert.Equal(t, []string{"Stabilized"}, v.Stage5.EditedVideos[0].Edits)
}

func TestAssembleFinalVideo(t *testing.T) {
	v := newTestVideo(t)

	// editedVideos 为空：拒绝且不产生 finalVideo
	_, err := AssembleFinalVideo(v, "final.mp4", "1080p", testTime)
	require.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Nil(t, v.Stage5.FinalVideo)

	for _, n := range []int{3, 1, 2} {
		v, err = ApplyEditedVideo(v, n, "edit", nil, testTime)
		require.NoError(t, err)
	}
	v, err = AssembleFinalVideo(v, "final.mp4", "4k", testTime)
	require.NoError(t, err)
	fv := v.Stage5.FinalVideo
	require.NotNil(t, fv)
	assert.Equal(t, 3*FinalPerShotSeconds, fv.Duration)
	assert.Equal(t, []int{1, 2, 3}, fv.ShotsIncluded, "shotsIncluded 必须有序")
	assert.Equal(t, "4k", fv.Quality)

	// 再次合成是覆盖而不是追加
	v, err = AssembleFinalVideo(v, "final-v2.mp4", "720p", testTime)
	require.NoError(t, err)
	assert.Equal(t, "final-v2.mp4", v.Stage5.FinalVideo.Url)
	assert.Equal(t, "720p", v.Stage5.FinalVideo.Quality)
}

func TestSnapshotIsolation(t *testing.T) {
	v := newTestVideo(t)
	v, err := UpdateShotDescription(v, 1, "before", testTime)
	require.NoError(t, err)

	out, err := UpdateShotDescription(v, 1, "after", testTime)
	require.NoError(t, err)
	out.Stage2.Shots[0].Description = "mutated"
	assert.Equal(t, "before", v.Stage2.Shots[0].Description, "返回的快照与输入不共享底层数据")
}

func TestStageProgress(t *testing.T) {
	v := models.NewVideo("PRJ-test", "v", testTime)
	assert.Equal(t, 0, StageProgress(v))

	v.Stage1.ContentPrompt = "p"
	assert.Equal(t, 20, StageProgress(v))

	var err error
	v, err = UpdateShotDescription(v, 1, "s", testTime)
	require.NoError(t, err)
	v, err = ApplyGeneratedImage(v, models.GeneratedImage{ShotNumber: 1, Url: "i"}, testTime)
	require.NoError(t, err)
	v, err = ApplyGeneratedVideo(v, models.GeneratedVideo{ShotNumber: 1, Url: "v"}, testTime)
	require.NoError(t, err)
	v, err = ApplyEditedVideo(v, 1, "e", nil, testTime)
	require.NoError(t, err)
	v, err = AssembleFinalVideo(v, "f", "1080p", testTime)
	require.NoError(t, err)
	assert.Equal(t, 100, StageProgress(v))
}

func shotNumbers(shots []models.Shot) []int {
	out := make([]int, len(shots))
	for i, s := range shots {
		out[i] = s.Number
	}
	return out
}

func imageShotNumbers(in []models.GeneratedImage) []int {
	out := make([]int, len(in))
	for i, g := range in {
		out[i] = g.ShotNumber
	}
	return out
}

func videoShotNumbers(in []models.GeneratedVideo) []int {
	out := make([]int, len(in))
	for i, g := range in {
		out[i] = g.ShotNumber
	}
	return out
}

func editedShotNumbers(in []models.EditedVideo) []int {
	out := make([]int, len(in))
	for i, e := range in {
		out[i] = e.ShotNumber
	}
	return out
}
