package service

import (
	"context"
	"testing"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/repository"
	"github.com/MrMangoye/Project/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	persons  *repository.MemoryPersonsRepo
	families *repository.MemoryFamiliesRepo
	members  *MemberService
	family   *FamilyService
	rels     *RelationshipService
	events   *recordingPublisher
	calendar *repository.MemoryEventsRepo
	timeline *FamilyEventService
	familyID string
}

type recordingPublisher struct {
	events []MemberEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev MemberEvent) {
	p.events = append(p.events, ev)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &testEnv{
		persons:  repository.NewMemoryPersonsRepo(),
		families: repository.NewMemoryFamiliesRepo(),
		events:   &recordingPublisher{},
		calendar: repository.NewMemoryEventsRepo(),
	}
	locker := store.NewMutexFamilyLocker()
	env.members = NewMemberService(env.persons, env.families, locker, env.events, logger)
	env.family = NewFamilyService(env.families, env.persons, env.events, logger)
	env.rels = NewRelationshipService(env.persons, env.families, logger)
	env.timeline = NewFamilyEventService(env.calendar, env.persons, env.families, logger)

	famID, err := env.families.CreateFamily(context.Background(), &domain.Family{
		Name: "Test Family", CreatedBy: "user-1", AccessCode: "ABCDEF123456",
	})
	require.NoError(t, err)
	env.familyID = famID
	return env
}

// add 通过 MemberService 添加成员
func (e *testEnv) add(t *testing.T, name, gender string, edges domain.ProposedEdges) domain.PersonID {
	t.Helper()
	v, err := e.members.CreateMember(context.Background(), CreateMemberRequest{
		FamilyID:      e.familyID,
		ActingUserID:  "user-1",
		Member:        MemberInput{Name: name, Gender: gender},
		Relationships: edges,
	})
	require.NoError(t, err)
	return v.ID
}

func (e *testEnv) get(t *testing.T, id domain.PersonID) *domain.Person {
	t.Helper()
	p, err := e.persons.GetPerson(context.Background(), id)
	require.NoError(t, err)
	return p
}

func newTestLocker() store.FamilyLocker { return store.NewMutexFamilyLocker() }
