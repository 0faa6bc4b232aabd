package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProblem_Assignees_RoundTrip(t *testing.T) {
	var p Problem

	p.SetAssignees([]int64{100, 101, 102})
	assert.Equal(t, []int64{100, 101, 102}, p.Assignees())

	p.SetAssignees(nil)
	assert.Nil(t, p.AssigneesRaw)
	assert.Empty(t, p.Assignees())
}

func TestProblem_Assignees_SkipsGarbage(t *testing.T) {
	raw := " 100 , мусор, , 101 "
	p := Problem{AssigneesRaw: &raw}

	assert.Equal(t, []int64{100, 101}, p.Assignees())
}

func TestProblem_HasAssignee_IsSetMembership(t *testing.T) {
	var p Problem
	p.SetAssignees([]int64{100, 101})

	assert.True(t, p.HasAssignee(100))
	// Не первый элемент списка — всё равно исполнитель.
	assert.True(t, p.HasAssignee(101))
	assert.False(t, p.HasAssignee(102))

	// ID, являющийся префиксом чужого, исполнителем не считается.
	p.SetAssignees([]int64{1001})
	assert.False(t, p.HasAssignee(100))
	assert.False(t, p.HasAssignee(1))
}

func TestProblem_DueDateParsed(t *testing.T) {
	good := "2026-09-15"
	bad := "15.09.2026"

	p := Problem{DueDate: &good}
	d, ok := p.DueDateParsed()
	assert.True(t, ok)
	assert.Equal(t, "2026-09-15", d.Format("2006-01-02"))

	p.DueDate = &bad
	_, ok = p.DueDateParsed()
	assert.False(t, ok)

	p.DueDate = nil
	_, ok = p.DueDateParsed()
	assert.False(t, ok)
}
