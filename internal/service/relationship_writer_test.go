package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/relationship"
	"github.com/MrMangoye/Project/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyRelationships_SpouseSymmetricAndIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	x := env.add(t, "Xavier", "male", domain.ProposedEdges{})
	p := env.add(t, "Paula", "female", domain.ProposedEdges{})

	w := env.members.Writer()
	proposed := domain.ProposedEdges{Spouses: domain.EdgeSet{x}}
	require.NoError(t, w.ApplyRelationships(ctx, env.get(t, p), proposed))
	require.NoError(t, w.ApplyRelationships(ctx, env.get(t, p), proposed))

	assert.Equal(t, domain.EdgeSet{p}, env.get(t, x).Relationships.Spouses)
	assert.Equal(t, domain.EdgeSet{x}, env.get(t, p).Relationships.Spouses)
}

func TestApplyRelationships_ReplaceAllRemovesStaleInverse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.add(t, "Anna", "female", domain.ProposedEdges{})
	b := env.add(t, "Boris", "male", domain.ProposedEdges{})
	c := env.add(t, "Carl", "male", domain.ProposedEdges{Siblings: domain.EdgeSet{a, b}})

	assert.Equal(t, domain.EdgeSet{c}, env.get(t, a).Relationships.Siblings)
	assert.Equal(t, domain.EdgeSet{c}, env.get(t, b).Relationships.Siblings)

	require.NoError(t, env.members.Writer().ApplyRelationships(ctx, env.get(t, c),
		domain.ProposedEdges{Siblings: domain.EdgeSet{b}}))

	assert.Empty(t, env.get(t, a).Relationships.Siblings)
	assert.Equal(t, domain.EdgeSet{c}, env.get(t, b).Relationships.Siblings)
	assert.Equal(t, domain.EdgeSet{b}, env.get(t, c).Relationships.Siblings)
}

func TestApplyRelationships_RejectsCrossFamilyBeforeMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.add(t, "Anna", "female", domain.ProposedEdges{})
	b := env.add(t, "Boris", "male", domain.ProposedEdges{})

	otherFam, err := env.families.CreateFamily(ctx, &domain.Family{Name: "Other", AccessCode: "000000000000"})
	require.NoError(t, err)
	stranger, err := env.persons.CreatePerson(ctx, &domain.Person{FamilyID: otherFam, Name: "Stranger"})
	require.NoError(t, err)

	err = env.members.Writer().ApplyRelationships(ctx, env.get(t, a),
		domain.ProposedEdges{Spouses: domain.EdgeSet{b, stranger}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	// 没有任何部分写入
	assert.Empty(t, env.get(t, a).Relationships.Spouses)
	assert.Empty(t, env.get(t, b).Relationships.Spouses)
	assert.Empty(t, env.get(t, stranger).Relationships.Spouses)
}

func TestApplyRelationships_RejectsSelfAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.add(t, "Anna", "female", domain.ProposedEdges{})

	err := env.members.Writer().ApplyRelationships(ctx, env.get(t, a), domain.ProposedEdges{Parents: domain.EdgeSet{a}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	err = env.members.Writer().ApplyRelationships(ctx, env.get(t, a), domain.ProposedEdges{Siblings: domain.EdgeSet{"ghost"}})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "relationships.siblings", verr.Field)
}

func TestApplyRelationships_RejectsAncestryCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.add(t, "Grandpa", "male", domain.ProposedEdges{})
	m := env.add(t, "Mum", "female", domain.ProposedEdges{Parents: domain.EdgeSet{g}})
	c := env.add(t, "Kid", "male", domain.ProposedEdges{Parents: domain.EdgeSet{m}})

	// Grandpa 以孙子为父：环
	err := env.members.Writer().ApplyRelationships(ctx, env.get(t, g), domain.ProposedEdges{Parents: domain.EdgeSet{c}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	// Kid 声明 Grandpa 为子女：环
	err = env.members.Writer().ApplyRelationships(ctx, env.get(t, c), domain.ProposedEdges{
		Parents: domain.EdgeSet{m}, Children: domain.EdgeSet{g},
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	assert.Empty(t, env.get(t, g).Relationships.Parents)
}

func TestApplyRelationships_ChildrenNilKeepsEmptyReplaces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dad := env.add(t, "Dad", "male", domain.ProposedEdges{})
	kid := env.add(t, "Kid", "female", domain.ProposedEdges{})
	w := env.members.Writer()

	require.NoError(t, w.ApplyRelationships(ctx, env.get(t, dad), domain.ProposedEdges{Children: domain.EdgeSet{kid}}))
	assert.Equal(t, domain.EdgeSet{dad}, env.get(t, kid).Relationships.Parents)

	// nil：不动子女
	require.NoError(t, w.ApplyRelationships(ctx, env.get(t, dad), domain.ProposedEdges{}))
	assert.Equal(t, domain.EdgeSet{dad}, env.get(t, kid).Relationships.Parents)

	// 空集合：清空子女
	require.NoError(t, w.ApplyRelationships(ctx, env.get(t, dad), domain.ProposedEdges{Children: domain.EdgeSet{}}))
	assert.Empty(t, env.get(t, kid).Relationships.Parents)
}

func TestApplyRelationships_UnknownPerson(t *testing.T) {
	env := newTestEnv(t)
	err := env.members.Writer().ApplyRelationships(context.Background(),
		&domain.Person{ID: "nobody", FamilyID: env.familyID}, domain.ProposedEdges{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPlanRelationships_NoChangesNoUpdates(t *testing.T) {
	a := &domain.Person{ID: "a", FamilyID: "f", Relationships: domain.Relationships{Spouses: domain.EdgeSet{"b"}}}
	b := &domain.Person{ID: "b", FamilyID: "f", Relationships: domain.Relationships{Spouses: domain.EdgeSet{"a"}}}

	updates, err := PlanRelationships(a, domain.ProposedEdges{Spouses: domain.EdgeSet{"b"}}, []*domain.Person{a, b})
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestPlanRelationships_NewPersonIncluded(t *testing.T) {
	dad := &domain.Person{ID: "dad", FamilyID: "f"}
	kid := &domain.Person{ID: "kid", FamilyID: "f"}

	updates, err := PlanRelationships(kid, domain.ProposedEdges{Parents: domain.EdgeSet{"dad"}}, []*domain.Person{dad})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, domain.PersonID("kid"), updates[0].PersonID)
	assert.Equal(t, domain.EdgeSet{"dad"}, updates[0].Relationships.Parents)
}

// 写入后：spouses/siblings 对称，children 与 parents 一致
func TestApplyRelationships_SymmetryProperty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.add(t, "Gran", "female", domain.ProposedEdges{})
	m := env.add(t, "Mum", "female", domain.ProposedEdges{Parents: domain.EdgeSet{g}})
	d := env.add(t, "Dad", "male", domain.ProposedEdges{Spouses: domain.EdgeSet{m}})
	a := env.add(t, "Ann", "female", domain.ProposedEdges{Parents: domain.EdgeSet{m, d}})
	b := env.add(t, "Bob", "male", domain.ProposedEdges{Parents: domain.EdgeSet{m, d}, Siblings: domain.EdgeSet{a}})
	_ = env.add(t, "Uncle", "male", domain.ProposedEdges{Siblings: domain.EdgeSet{m}})
	require.NoError(t, env.members.Writer().ApplyRelationships(ctx, env.get(t, b), domain.ProposedEdges{
		Parents: domain.EdgeSet{m, d},
	}))

	members, err := env.persons.ListByFamily(ctx, env.familyID)
	require.NoError(t, err)
	graph := relationship.NewGraph(members, zap.NewNop())
	all := graph.DeriveAll()

	for id, da := range all {
		for _, s := range da.Spouses {
			assert.True(t, all[s].Spouses.Has(id), "spouse symmetry %s/%s", id, s)
		}
		for _, s := range da.Siblings {
			assert.True(t, all[s].Siblings.Has(id), "sibling symmetry %s/%s", id, s)
		}
		for _, c := range da.Children {
			p, _ := graph.Member(c)
			assert.True(t, p.Relationships.Parents.Has(id))
		}
	}
	// 共同父母仍是兄弟姐妹
	assert.True(t, all[a].Siblings.Has(b))
	assert.Empty(t, env.get(t, a).Relationships.Siblings)
}

func TestApplyRelationships_SaveFailureLeavesNothing(t *testing.T) {
	persons := &failingSaveRepo{MemoryPersonsRepo: repository.NewMemoryPersonsRepo()}
	families := repository.NewMemoryFamiliesRepo()
	ctx := context.Background()
	famID, err := families.CreateFamily(ctx, &domain.Family{Name: "F", AccessCode: "111111111111"})
	require.NoError(t, err)
	a, _ := persons.CreatePerson(ctx, &domain.Person{FamilyID: famID, Name: "A"})
	b, _ := persons.CreatePerson(ctx, &domain.Person{FamilyID: famID, Name: "B"})
	require.NoError(t, families.AddMember(ctx, famID, a))
	require.NoError(t, families.AddMember(ctx, famID, b))

	svc := NewMemberService(persons, families, newTestLocker(), NopEventPublisher{}, zap.NewNop())
	pa, _ := persons.GetPerson(ctx, a)
	err = svc.Writer().ApplyRelationships(ctx, pa, domain.ProposedEdges{Spouses: domain.EdgeSet{b}})
	require.Error(t, err)

	pa, _ = persons.GetPerson(ctx, a)
	pb, _ := persons.GetPerson(ctx, b)
	assert.Empty(t, pa.Relationships.Spouses)
	assert.Empty(t, pb.Relationships.Spouses)
}

type failingSaveRepo struct {
	*repository.MemoryPersonsRepo
}

func (r *failingSaveRepo) SaveRelationships(context.Context, string, []repository.RelationshipUpdate) error {
	return errors.New("db down")
}
