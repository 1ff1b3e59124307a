package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFamilyAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAnalyticsService(env.persons, env.families, env.calendar, zap.NewNop())

	create := func(name, gender, dob, occupation, industry string, parents ...domain.PersonID) domain.PersonID {
		v, err := env.members.CreateMember(ctx, CreateMemberRequest{
			FamilyID: env.familyID,
			Member: MemberInput{
				Name: name, Gender: gender, DateOfBirth: dob, Occupation: occupation,
				Business: domain.Business{Industry: industry},
			},
			Relationships: domain.ProposedEdges{Parents: parents},
		})
		require.NoError(t, err)
		return v.ID
	}
	g := create("Gran", "female", "1940-03-01", "Nurse", "")
	m := create("Mum", "female", "1970-06-15", "Nurse", "Education", g)
	k := create("Kid", "male", "2010-01-01", "", "", m)
	create("Guest", "", "", "Farmer", "Agriculture")

	addEvent := func(date, status string) {
		_, err := env.timeline.CreateEvent(ctx, CreateEventRequest{
			FamilyID: env.familyID, Title: "Event " + date, Type: "reunion", Date: date, Status: status,
		})
		require.NoError(t, err)
	}
	addEvent("2024-06-01", "")
	addEvent("2024-12-25", "upcoming")
	addEvent("2024-07-04", "cancelled")
	addEvent("2024-05-31", "upcoming")

	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	a, err := svc.FamilyAnalytics(ctx, env.familyID, now)
	require.NoError(t, err)

	assert.Equal(t, 4, a.TotalMembers)
	assert.Equal(t, []CountItem{
		{"0-18", 1}, {"19-35", 0}, {"36-50", 0}, {"51-65", 1}, {"66+", 1},
	}, a.AgeDistribution)
	require.NotNil(t, a.AverageAge)
	// (84 + 53 + 14) / 3 = 50.33
	assert.Equal(t, 50, *a.AverageAge)
	assert.Equal(t, 2, a.GenderCounts["female"])
	assert.Equal(t, 1, a.GenderCounts["male"])
	assert.Equal(t, 1, a.GenderCounts["unspecified"])
	assert.Equal(t, []CountItem{{"Nurse", 2}, {"Farmer", 1}}, a.Occupations)
	assert.Equal(t, []CountItem{{"Agriculture", 1}, {"Education", 1}}, a.Industries)
	assert.Equal(t, g, a.OldestMemberID)
	assert.Equal(t, k, a.YoungestMemberID)
	assert.Equal(t, 3, a.Generations)
	// 当天及以后、状态为 upcoming
	assert.Equal(t, 2, a.UpcomingEvents)
}

func TestFamilyAnalytics_EmptyAndMissing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(env.persons, env.families, env.calendar, zap.NewNop())

	a, err := svc.FamilyAnalytics(context.Background(), env.familyID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, a.TotalMembers)
	assert.Nil(t, a.AverageAge)
	assert.Len(t, a.AgeDistribution, 5)
	assert.Equal(t, 0, a.UpcomingEvents)

	_, err = svc.FamilyAnalytics(context.Background(), "missing", time.Now())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
