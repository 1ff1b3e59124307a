package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/relationship"
	"github.com/MrMangoye/Project/internal/repository"

	"go.uber.org/zap"
)

// AnalyticsService 家族统计（简单计数，不做趋势分析）
type AnalyticsService struct {
	loader *repository.FamilyMembersLoader
	events repository.EventsRepository
	logger *zap.Logger
}

func NewAnalyticsService(persons repository.PersonsRepository, families repository.FamiliesRepository, events repository.EventsRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{loader: repository.NewFamilyMembersLoader(families, persons), events: events, logger: logger}
}

// CountItem 分布项
type CountItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FamilyAnalytics 家族统计结果
type FamilyAnalytics struct {
	FamilyID          string          `json:"familyId"`
	TotalMembers      int             `json:"totalMembers"`
	AgeDistribution   []CountItem     `json:"ageDistribution"`
	AverageAge        *int            `json:"averageAge"`
	GenderCounts      map[string]int  `json:"genderCounts"`
	Occupations       []CountItem     `json:"occupations"`
	Industries        []CountItem     `json:"industries"`
	UpcomingEvents    int             `json:"upcomingEvents"`
	OldestMemberID    domain.PersonID `json:"oldestMemberId,omitempty"`
	YoungestMemberID  domain.PersonID `json:"youngestMemberId,omitempty"`
	Generations       int             `json:"generations"`
	DanglingEdgeCount int             `json:"danglingEdgeCount"`
}

var ageBuckets = []struct {
	name     string
	min, max int
}{
	{"0-18", 0, 18},
	{"19-35", 19, 35},
	{"36-50", 36, 50},
	{"51-65", 51, 65},
	{"66+", 66, math.MaxInt},
}

// FamilyAnalytics 按 now 计算年龄
func (s *AnalyticsService) FamilyAnalytics(ctx context.Context, familyID string, now time.Time) (*FamilyAnalytics, error) {
	members, err := s.loader.LoadFamilyMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	g := relationship.NewGraph(members, s.logger)
	upcoming, err := s.events.CountUpcoming(ctx, familyID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count upcoming events: %w", err)
	}

	out := &FamilyAnalytics{
		FamilyID:     familyID,
		TotalMembers: g.Len(),
		GenderCounts: map[string]int{
			string(domain.GenderMale):        0,
			string(domain.GenderFemale):      0,
			string(domain.GenderOther):       0,
			string(domain.GenderUnspecified): 0,
		},
		UpcomingEvents:    upcoming,
		Generations:       g.Generations(),
		DanglingEdgeCount: len(g.Dangling()),
	}

	buckets := make([]int, len(ageBuckets))
	occupations := map[string]int{}
	industries := map[string]int{}
	ageSum, aged := 0, 0
	var oldest, youngest *domain.Person

	for _, m := range g.Members() {
		out.GenderCounts[string(m.Gender)]++
		if occ := strings.TrimSpace(m.Occupation); occ != "" {
			occupations[occ]++
		}
		if ind := strings.TrimSpace(m.Business.Industry); ind != "" {
			industries[ind]++
		}
		age, ok := m.AgeAt(now)
		if !ok {
			continue
		}
		ageSum += age
		aged++
		for i, b := range ageBuckets {
			if age >= b.min && age <= b.max {
				buckets[i]++
				break
			}
		}
		if oldest == nil || m.DateOfBirth.Before(*oldest.DateOfBirth) {
			oldest = m
		}
		if youngest == nil || m.DateOfBirth.After(*youngest.DateOfBirth) {
			youngest = m
		}
	}

	out.AgeDistribution = make([]CountItem, len(ageBuckets))
	for i, b := range ageBuckets {
		out.AgeDistribution[i] = CountItem{Name: b.name, Count: buckets[i]}
	}
	if aged > 0 {
		avg := int(math.Round(float64(ageSum) / float64(aged)))
		out.AverageAge = &avg
	}
	if oldest != nil {
		out.OldestMemberID = oldest.ID
		out.YoungestMemberID = youngest.ID
	}
	out.Occupations = sortedCounts(occupations)
	out.Industries = sortedCounts(industries)
	return out, nil
}

// sortedCounts 按数量降序，数量相同按名称
func sortedCounts(m map[string]int) []CountItem {
	out := make([]CountItem, 0, len(m))
	for k, v := range m {
		out = append(out, CountItem{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
