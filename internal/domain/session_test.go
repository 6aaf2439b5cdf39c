package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptHidesSystemInstruction(t *testing.T) {
	s := &Session{}
	s.Append(RoleSystem, "hidden")
	s.Append(RoleUser, "Hello")
	s.Append(RoleAssistant, "Hi")

	tr := s.Transcript()
	require.Len(t, tr, 2)
	assert.Equal(t, RoleUser, tr[0].Role)
	assert.Equal(t, RoleAssistant, tr[1].Role)

	hist := s.History()
	require.Len(t, hist, 3)
	assert.Equal(t, RoleSystem, hist[0].Role)
}

func TestTranscriptWithoutSystem(t *testing.T) {
	s := &Session{}
	s.Append(RoleAssistant, "opening")
	assert.Len(t, s.Transcript(), 1)
}

func TestCloneIsIndependent(t *testing.T) {
	s := &Session{Checklist: NewChecklist(), Scenario: &DefaultScenarios[0]}
	s.Append(RoleSystem, "sys")

	c := s.Clone()
	c.Append(RoleUser, "more")
	c.Checklist[CategoryApology] = true
	c.Scenario.Issue = "changed"

	assert.Len(t, s.Messages, 1)
	assert.False(t, s.Checklist[CategoryApology])
	assert.NotEqual(t, "changed", s.Scenario.Issue)
}

func TestChecklistMergeIsMonotonic(t *testing.T) {
	c := NewChecklist()
	c.Merge(map[Category]bool{CategoryApology: true})
	c.Merge(map[Category]bool{CategoryApology: false, CategoryOffer: true})

	assert.True(t, c[CategoryApology])
	assert.True(t, c[CategoryOffer])
	assert.False(t, c.Complete())
	assert.Equal(t, []Category{CategoryCause, CategoryRemediation}, c.Remaining())

	c.Merge(map[Category]bool{CategoryCause: true, CategoryRemediation: true})
	assert.True(t, c.Complete())
	assert.Empty(t, c.Remaining())
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "謝罪", CategoryApology.Label())
	assert.Equal(t, "unknown", Category("unknown").Label())
}
