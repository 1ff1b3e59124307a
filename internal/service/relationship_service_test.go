package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/relationship"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRelationships_Summaries(t *testing.T) {
	env := newTestEnv(t)
	g := env.add(t, "Gran", "female", domain.ProposedEdges{})
	m := env.add(t, "Mum", "female", domain.ProposedEdges{Parents: domain.EdgeSet{g}})
	p := env.add(t, "Pip", "male", domain.ProposedEdges{Parents: domain.EdgeSet{m}})

	v, err := env.rels.GetRelationships(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Pip", v.Person.Name)
	require.Len(t, v.Parents, 1)
	assert.Equal(t, "Mum", v.Parents[0].Name)
	require.Len(t, v.Grandparents, 1)
	assert.Equal(t, g, v.Grandparents[0].ID)
	assert.NotNil(t, v.Cousins)
	assert.Empty(t, v.Cousins)

	_, err = env.rels.GetRelationships(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetRelationshipBetween(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.add(t, "Grandad", "male", domain.ProposedEdges{})
	m := env.add(t, "Mum", "female", domain.ProposedEdges{Parents: domain.EdgeSet{g}})
	p := env.add(t, "Pia", "female", domain.ProposedEdges{Parents: domain.EdgeSet{m}})

	v, err := env.rels.GetRelationshipBetween(ctx, p, g)
	require.NoError(t, err)
	assert.Equal(t, relationship.NewNullableLabel(relationship.LabelGrandfather, true), v.Relationship1To2)
	// 反向没有 grandchild 称谓
	assert.False(t, v.Relationship2To1.Valid)

	otherFam, err := env.families.CreateFamily(ctx, &domain.Family{Name: "Other", AccessCode: "999999999999"})
	require.NoError(t, err)
	outsider, err := env.persons.CreatePerson(ctx, &domain.Person{FamilyID: otherFam, Name: "Outsider"})
	require.NoError(t, err)

	_, err = env.rels.GetRelationshipBetween(ctx, p, outsider)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = env.rels.GetRelationshipBetween(ctx, p, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
