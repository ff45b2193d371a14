package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNewProjectDefaults(t *testing.T) {
	p := NewProject("Launch", "desc", "Product", testTime)
	assert.Equal(t, ProjectStatusActive, p.Status)
	assert.NotNil(t, p.Videos)
	assert.Empty(t, p.Videos)
	assert.Equal(t, p.Created, p.Modified)
}

func TestDuplicateProject(t *testing.T) {
	src := NewProject("Launch", "desc", "Product", testTime)
	src.Config = JSONMap{"brand": "KitchenAid"}
	v := NewVideo(src.ID, "Teaser", testTime)
	v.Stage1.ContentPrompt = "prompt"
	src.Videos = append(src.Videos, v)

	later := testTime.Add(time.Hour)
	dup := DuplicateProject(src, later)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Launch (Copy)", dup.Name)
	assert.Equal(t, later, dup.Created)
	assert.Equal(t, later, dup.Modified)

	require.Len(t, dup.Videos, 1)
	assert.NotEqual(t, src.Videos[0].ID, dup.Videos[0].ID)
	assert.Equal(t, dup.ID, dup.Videos[0].ProjectId)
	assert.Equal(t, src.Videos[0].Stage1, dup.Videos[0].Stage1, "视频内容必须深度相等")

	// 副本与原件不共享底层数据
	dup.Videos[0].Stage1.ContentPrompt = "mutated"
	dup.Config["brand"] = "other"
	assert.Equal(t, "prompt", src.Videos[0].Stage1.ContentPrompt)
	assert.Equal(t, "KitchenAid", src.Config["brand"])
}

func TestDuplicateVideo(t *testing.T) {
	src := NewVideo("PRJ-1", "Teaser", testTime)
	src.Stage1.ProductImages = append(src.Stage1.ProductImages, "img.png")

	later := testTime.Add(time.Hour)
	dup := DuplicateVideo(src, later)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Teaser - Copy", dup.Name)
	assert.Equal(t, later, dup.Created)
	assert.Equal(t, src.Stage1, dup.Stage1)

	dup.Stage1.ProductImages[0] = "mutated"
	assert.Equal(t, "img.png", src.Stage1.ProductImages[0])
}

func TestToggleStatus(t *testing.T) {
	p := NewProject("x", "", "", testTime)
	p.ToggleStatus(testTime.Add(time.Minute))
	assert.Equal(t, ProjectStatusInactive, p.Status)
	assert.Equal(t, testTime.Add(time.Minute), p.Modified)
	p.ToggleStatus(testTime.Add(2 * time.Minute))
	assert.Equal(t, ProjectStatusActive, p.Status)
}

func TestParameterValidate(t *testing.T) {
	assert.NoError(t, TextParam("k", "anything").Validate())
	assert.NoError(t, NumberParam("k", 3.5).Validate())
	assert.Error(t, Parameter{Key: "k", Type: ParamNumber, Value: "abc"}.Validate())
	assert.NoError(t, DropdownParam("k", "a", []string{"a", "b"}).Validate())
	assert.Error(t, DropdownParam("k", "c", []string{"a", "b"}).Validate())
	assert.Error(t, Parameter{Key: "k", Type: "mystery"}.Validate())
}

func TestJSONMapRoundTrip(t *testing.T) {
	m := JSONMap{"nested": map[string]interface{}{"a": "b"}}
	val, err := m.Value()
	require.NoError(t, err)

	var got JSONMap
	require.NoError(t, got.Scan(val))
	assert.Equal(t, "b", got["nested"].(map[string]interface{})["a"])

	c := m.Clone()
	c["nested"].(map[string]interface{})["a"] = "mutated"
	assert.Equal(t, "b", m["nested"].(map[string]interface{})["a"])
}
