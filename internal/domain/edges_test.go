package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeSet_AddIsIdempotent(t *testing.T) {
	var s EdgeSet
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.False(t, s.Add(""))
	assert.True(t, s.Add("b"))
	assert.Equal(t, EdgeSet{"a", "b"}, s)

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, EdgeSet{"b"}, s)
}

func TestEdgeSet_EqualIgnoresOrder(t *testing.T) {
	assert.True(t, EdgeSet{"a", "b"}.Equal(EdgeSet{"b", "a"}))
	assert.False(t, EdgeSet{"a"}.Equal(EdgeSet{"a", "b"}))
	assert.True(t, EdgeSet(nil).Equal(EdgeSet{}))
}

func TestEdgeSet_MarshalNilAsEmptyArray(t *testing.T) {
	b, err := json.Marshal(Relationships{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"parents":[],"spouses":[],"siblings":[]}`, string(b))
}

func TestRelationships_UnmarshalLegacySingularShape(t *testing.T) {
	var r Relationships
	err := json.Unmarshal([]byte(`{"parent":["p1","p1"],"spouse":["s1"],"sibling":["b1"],"child":["c1"]}`), &r)
	require.NoError(t, err)

	assert.Equal(t, EdgeSet{"p1"}, r.Parents)
	assert.Equal(t, EdgeSet{"s1"}, r.Spouses)
	assert.Equal(t, EdgeSet{"b1"}, r.Siblings)
}

func TestProposedEdges_ChildrenNilVersusEmpty(t *testing.T) {
	var absent ProposedEdges
	require.NoError(t, json.Unmarshal([]byte(`{"parents":["p1"]}`), &absent))
	assert.Nil(t, absent.Children)

	var empty ProposedEdges
	require.NoError(t, json.Unmarshal([]byte(`{"children":[]}`), &empty))
	assert.NotNil(t, empty.Children)
	assert.Len(t, empty.Children, 0)

	var legacy ProposedEdges
	require.NoError(t, json.Unmarshal([]byte(`{"child":["c1"],"children":["c2","c1"]}`), &legacy))
	assert.Equal(t, EdgeSet{"c2", "c1"}, legacy.Children)
}

func TestParseGender(t *testing.T) {
	assert.Equal(t, GenderMale, ParseGender("Male"))
	assert.Equal(t, GenderFemale, ParseGender("female"))
	assert.Equal(t, GenderOther, ParseGender("other"))
	assert.Equal(t, GenderUnspecified, ParseGender("prefer-not-to-say"))
	assert.Equal(t, GenderUnspecified, ParseGender(""))
}

func TestPerson_AgeAt(t *testing.T) {
	dob := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	p := &Person{DateOfBirth: &dob}

	age, ok := p.AgeAt(time.Date(2020, time.June, 14, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 29, age)

	age, _ = p.AgeAt(time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 30, age)

	_, ok = (&Person{}).AgeAt(time.Now())
	assert.False(t, ok)
}

func TestValidationError_IsErrValidation(t *testing.T) {
	err := NewValidationError("name", "is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "name: is required", err.Error())

	nf := NotFoundf("family %s", "f1")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.NotErrorIs(t, nf, ErrValidation)
}
