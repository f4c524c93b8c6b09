package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tahfidzid/mutqin-backend/internal/config"
	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/pairing"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
)

// In-memory stores standing in for the pgx repositories.

type fakeClassStore struct {
	classes map[int]*model.Class
}

func (f *fakeClassStore) GetByID(_ context.Context, id int) (*model.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, fmt.Errorf("class %d not found", id)
	}
	return c, nil
}

type fakeStudentStore struct {
	students map[int]model.Student
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, fmt.Errorf("student %d not found", id)
	}
	return &s, nil
}

func (f *fakeStudentStore) GetByIDs(_ context.Context, ids []int) (map[int]model.Student, error) {
	out := make(map[int]model.Student)
	for _, id := range ids {
		if s, ok := f.students[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeStudentStore) ListEligibleIDs(_ context.Context, classID int, gender model.Gender) ([]int, error) {
	var ids []int
	for id, s := range f.students {
		if s.ClassID == classID && s.Gender == gender && s.Active {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

type fakeLogStore struct {
	counts map[int]int
}

func (f *fakeLogStore) VerifiedCounts(_ context.Context, _ int, _, _ time.Time) (map[int]int, error) {
	if f.counts == nil {
		return map[int]int{}, nil
	}
	return f.counts, nil
}

type fakeDayStore struct {
	mu   sync.Mutex
	days map[string]*model.CompanionDay
}

func newFakeDayStore() *fakeDayStore {
	return &fakeDayStore{days: make(map[string]*model.CompanionDay)}
}

func dayKey(classID int, date time.Time) string {
	return fmt.Sprintf("%d|%s", classID, date.Format("2006-01-02"))
}

func (f *fakeDayStore) Create(_ context.Context, d *model.CompanionDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := dayKey(d.ClassID, d.TargetDate)
	if _, exists := f.days[key]; exists {
		return repository.ErrCompanionDayExists
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	f.days[key] = &cp
	return nil
}

func (f *fakeDayStore) GetByClassAndDate(_ context.Context, classID int, date time.Time) (*model.CompanionDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.days[dayKey(classID, date)]
	if !ok {
		return nil, repository.ErrCompanionDayNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDayStore) SaveDraft(_ context.Context, d *model.CompanionDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.days[dayKey(d.ClassID, d.TargetDate)]
	if !ok || stored.PublishedAt != nil {
		return repository.ErrAlreadyPublished
	}
	d.UpdatedAt = time.Now()
	cp := *d
	f.days[dayKey(d.ClassID, d.TargetDate)] = &cp
	return nil
}

func (f *fakeDayStore) MarkPublished(_ context.Context, id uuid.UUID, pairings [][]int, rooms map[int][]int,
	linkSnapshot, passwordSnapshot *string, publishedBy *int, autoPublished bool) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.days {
		if d.ID != id {
			continue
		}
		if d.PublishedAt != nil {
			return time.Time{}, repository.ErrAlreadyPublished
		}
		now := time.Now()
		d.Pairings = pairings
		d.RoomAssignments = rooms
		d.LinkSnapshot = linkSnapshot
		d.PasswordSnapshot = passwordSnapshot
		d.PublishedAt = &now
		d.PublishedBy = publishedBy
		d.AutoPublished = autoPublished
		return now, nil
	}
	return time.Time{}, repository.ErrCompanionDayNotFound
}

func (f *fakeDayStore) LatestPublishedBefore(_ context.Context, classID int, date time.Time) ([][]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *model.CompanionDay
	for _, d := range f.days {
		if d.ClassID != classID || d.PublishedAt == nil || !d.TargetDate.Before(date) {
			continue
		}
		if best == nil || d.TargetDate.After(best.TargetDate) {
			best = d
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.Pairings, nil
}

func (f *fakeDayStore) ListDueDrafts(_ context.Context, date time.Time) ([]model.CompanionDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []model.CompanionDay
	for _, d := range f.days {
		if d.PublishedAt == nil && d.TargetDate.Equal(date) {
			due = append(due, *d)
		}
	}
	return due, nil
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   map[int]string
	failed map[int]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sent: make(map[int]string), failed: make(map[int]bool)}
}

func (f *fakeTransport) Send(_ context.Context, studentID int, _, message, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed[studentID] {
		return errors.New("transport unavailable")
	}
	f.sent[studentID] = message
	return nil
}

type testEnv struct {
	svc       *CompanionsService
	classes   *fakeClassStore
	students  *fakeStudentStore
	logs      *fakeLogStore
	days      *fakeDayStore
	transport *fakeTransport
}

func strPtr(s string) *string { return &s }

// newTestEnv builds a service over one male class (ID 1, room start 3,
// meeting snapshot set) with n active students (IDs 1..n).
func newTestEnv(t *testing.T, n int) *testEnv {
	t.Helper()

	classes := &fakeClassStore{classes: map[int]*model.Class{
		1: {
			ID:              1,
			ProgramID:       1,
			Name:            "Halaqah Al-Fatih",
			Gender:          model.GenderMale,
			Active:          true,
			RoomStart:       3,
			MeetingLink:     strPtr("https://meet.example.com/alfatih"),
			MeetingPassword: strPtr("alfatih123"),
		},
	}}

	students := &fakeStudentStore{students: make(map[int]model.Student)}
	for i := 1; i <= n; i++ {
		students.students[i] = model.Student{
			ID:      i,
			NIS:     fmt.Sprintf("2024%03d", i),
			Name:    fmt.Sprintf("Santri %d", i),
			Gender:  model.GenderMale,
			ClassID: 1,
			Active:  true,
		}
	}

	logs := &fakeLogStore{}
	days := newFakeDayStore()
	transport := newFakeTransport()

	cfg := &config.Config{
		AttendanceWindowDays: 14,
		MinCommitmentRate:    0.6,
		PublishLeadDays:      1,
		SchedulerWorkers:     4,
		NotifyChannel:        "push",
	}

	svc := NewCompanionsService(cfg, classes, students, logs, days, transport, nil, zerolog.Nop())
	svc.newRNG = func() *rand.Rand {
		return rand.New(rand.NewPCG(42, 43))
	}

	return &testEnv{svc: svc, classes: classes, students: students, logs: logs, days: days, transport: transport}
}

func testDate() time.Time {
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

func TestGenerateCoversEveryEligibleStudentOnce(t *testing.T) {
	env := newTestEnv(t, 7)
	res, err := env.svc.Generate(context.Background(), 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping:  model.GroupingPairs,
		Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)
	require.Empty(t, res.Message)

	seen := make(map[int]bool)
	for _, g := range res.Groups {
		for _, id := range g {
			require.False(t, seen[id], "student %d appears twice", id)
			seen[id] = true
		}
	}
	require.Len(t, seen, 7)
	// 7 students in pairs: remainder absorbed, so 3 groups.
	require.Len(t, res.Groups, 3)
}

func TestGenerateInsufficientStudentsReturnsMessage(t *testing.T) {
	env := newTestEnv(t, 1)
	res, err := env.svc.Generate(context.Background(), 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping:  model.GroupingPairs,
		Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)
	require.Empty(t, res.Groups)
	require.Contains(t, res.Message, "kurang dari 2")

	// The draft row still exists and can be regenerated later.
	_, err = env.days.GetByClassAndDate(context.Background(), 1, testDate())
	require.NoError(t, err)
}

func TestGenerateCommittedOnlyFiltersByRate(t *testing.T) {
	env := newTestEnv(t, 4)
	// Window 14 days, rate 0.6: needs >= 9 verified days.
	env.logs.counts = map[int]int{1: 14, 2: 9, 3: 8, 4: 0}

	res, err := env.svc.Generate(context.Background(), 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping:         model.GroupingPairs,
		Algorithm:        model.AlgorithmRandom,
		AttendanceSource: model.AttendanceCommittedOnly,
	})
	require.NoError(t, err)

	var ids []int
	for _, g := range res.Groups {
		ids = append(ids, g...)
	}
	slices.Sort(ids)
	require.Equal(t, []int{1, 2}, ids)
}

func TestGenerateRejectsInvalidLockedGroup(t *testing.T) {
	env := newTestEnv(t, 6)
	_, err := env.svc.Generate(context.Background(), 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping:     model.GroupingPairs,
		Algorithm:    model.AlgorithmRandom,
		LockedGroups: [][]int{{1, 2, 3}},
	})
	var lge *pairing.LockedGroupError
	require.ErrorAs(t, err, &lge)
	require.Equal(t, pairing.LockRuleSize, lge.Rule)
}

func TestGenerateOnPublishedDayFails(t *testing.T) {
	env := newTestEnv(t, 4)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)
	_, err = env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)

	_, err = env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.ErrorIs(t, err, repository.ErrAlreadyPublished)
}

func TestLockedGroupsSurviveRegeneration(t *testing.T) {
	env := newTestEnv(t, 6)
	ctx := context.Background()

	_, err := env.svc.Lock(ctx, 1, testDate(), [][]int{{2, 5}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		res, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
			Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
		})
		require.NoError(t, err)
		require.Equal(t, []int{2, 5}, res.Groups[0])
	}
}

func TestPublishAssignsRoomsFromClassStart(t *testing.T) {
	env := newTestEnv(t, 6)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)

	staffID := 99
	day, err := env.svc.Publish(ctx, 1, testDate(), &staffID, false)
	require.NoError(t, err)
	require.True(t, day.Published())
	require.Equal(t, &staffID, day.PublishedBy)
	require.False(t, day.AutoPublished)

	// Class room start is 3: rooms 3, 4, 5.
	require.Len(t, day.RoomAssignments, 3)
	for _, room := range []int{3, 4, 5} {
		require.Contains(t, day.RoomAssignments, room)
	}
	require.Equal(t, "https://meet.example.com/alfatih", *day.LinkSnapshot)
	require.Equal(t, "alfatih123", *day.PasswordSnapshot)
}

func TestPublishTwiceKeepsFirstResult(t *testing.T) {
	env := newTestEnv(t, 4)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)

	first, err := env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)

	_, err = env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.ErrorIs(t, err, repository.ErrAlreadyPublished)

	stored, err := env.days.GetByClassAndDate(ctx, 1, testDate())
	require.NoError(t, err)
	require.Equal(t, first.RoomAssignments, stored.RoomAssignments)
	require.Equal(t, first.PublishedAt.Unix(), stored.PublishedAt.Unix())
}

func TestPublishGeneratesLazilyWhenDraftHasNoPairings(t *testing.T) {
	env := newTestEnv(t, 4)
	ctx := context.Background()

	// Lock creates the draft but never computes pairings.
	_, err := env.svc.Lock(ctx, 1, testDate(), [][]int{{1, 3}})
	require.NoError(t, err)

	day, err := env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)
	require.Len(t, day.Pairings, 2)
	require.Equal(t, []int{1, 3}, day.Pairings[0])
}

func TestPublishWithoutDraftFails(t *testing.T) {
	env := newTestEnv(t, 4)
	_, err := env.svc.Publish(context.Background(), 1, testDate(), nil, false)
	require.ErrorIs(t, err, repository.ErrCompanionDayNotFound)
}

func TestPublishInsufficientStudentsFails(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)

	_, err = env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.ErrorIs(t, err, ErrInsufficientStudents)

	stored, err := env.days.GetByClassAndDate(ctx, 1, testDate())
	require.NoError(t, err)
	require.False(t, stored.Published())
}

func TestPublishNotifiesEveryStudent(t *testing.T) {
	env := newTestEnv(t, 6)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)
	_, err = env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)

	require.Len(t, env.transport.sent, 6)
	for id, msg := range env.transport.sent {
		require.NotContains(t, msg, fmt.Sprintf("Santri %d,", id))
		require.Contains(t, msg, "Ruang")
		require.Contains(t, msg, "https://meet.example.com/alfatih")
	}
}

func TestPublishSurvivesNotificationFailure(t *testing.T) {
	env := newTestEnv(t, 4)
	env.transport.failed[2] = true
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)

	day, err := env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)
	require.True(t, day.Published())
	require.Len(t, env.transport.sent, 3)
}

func TestSnapshotImmutableAfterClassEdit(t *testing.T) {
	env := newTestEnv(t, 4)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)
	_, err = env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)

	// Staff changes the class meeting afterwards.
	env.classes.classes[1].MeetingLink = strPtr("https://meet.example.com/changed")

	payload, err := env.svc.GetAllCompanions(ctx, 1, testDate())
	require.NoError(t, err)
	require.Equal(t, "https://meet.example.com/alfatih", *payload.MeetingLink)
}

func TestGetAllCompanionsDraftNotVisible(t *testing.T) {
	env := newTestEnv(t, 4)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)

	_, err = env.svc.GetAllCompanions(ctx, 1, testDate())
	require.ErrorIs(t, err, ErrNotPublished)
}

func TestGetMyCompanionsExcludesSelf(t *testing.T) {
	env := newTestEnv(t, 4)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)
	day, err := env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)

	view, err := env.svc.GetMyCompanions(ctx, 1, testDate())
	require.NoError(t, err)
	require.NotContains(t, view.Companions, "Santri 1")
	require.Len(t, view.Companions, 1)
	require.Contains(t, day.RoomAssignments[view.Room], 1)
	require.Equal(t, "https://meet.example.com/alfatih", *view.MeetingLink)
}

func TestGetMyCompanionsUnassignedStudent(t *testing.T) {
	env := newTestEnv(t, 4)
	ctx := context.Background()

	_, err := env.svc.Generate(ctx, 1, testDate(), &model.GenerateCompanionsRequest{
		Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
	})
	require.NoError(t, err)
	_, err = env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)

	// Student 5 joins the class after publish: active but not in any room.
	env.students.students[5] = model.Student{
		ID: 5, NIS: "2024005", Name: "Santri 5",
		Gender: model.GenderMale, ClassID: 1, Active: true,
	}

	_, err = env.svc.GetMyCompanions(ctx, 5, testDate())
	require.ErrorIs(t, err, ErrStudentNotAssigned)
}

func TestAutoPublishDueCountsOutcomes(t *testing.T) {
	env := newTestEnv(t, 6)
	ctx := context.Background()

	// Second class with its own students.
	env.classes.classes[2] = &model.Class{
		ID: 2, ProgramID: 1, Name: "Halaqah An-Nur",
		Gender: model.GenderFemale, Active: true, RoomStart: 1,
	}
	for i := 10; i < 14; i++ {
		env.students.students[i] = model.Student{
			ID: i, NIS: fmt.Sprintf("2024%03d", i), Name: fmt.Sprintf("Santriwati %d", i),
			Gender: model.GenderFemale, ClassID: 2, Active: true,
		}
	}

	runDate := testDate().AddDate(0, 0, -1) // lead days = 1

	for _, classID := range []int{1, 2} {
		_, err := env.svc.Generate(ctx, classID, testDate(), &model.GenerateCompanionsRequest{
			Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
		})
		require.NoError(t, err)
	}

	// Class 1 is published by hand before the batch runs.
	_, err := env.svc.Publish(ctx, 1, testDate(), nil, false)
	require.NoError(t, err)

	report, err := env.svc.AutoPublishDue(ctx, runDate)
	require.NoError(t, err)
	require.Equal(t, 1, report.Due) // only class 2 remains a draft
	require.Equal(t, 1, report.Published)
	require.Equal(t, 0, report.Skipped)
	require.Equal(t, 0, report.Failed)

	day, err := env.days.GetByClassAndDate(ctx, 2, testDate())
	require.NoError(t, err)
	require.True(t, day.Published())
	require.True(t, day.AutoPublished)
	require.Nil(t, day.PublishedBy)
}

func TestAutoPublishDueIsolatesFailures(t *testing.T) {
	env := newTestEnv(t, 6)
	ctx := context.Background()

	// Class 2 has a single student, so its publish must fail while class 1
	// still goes through.
	env.classes.classes[2] = &model.Class{
		ID: 2, ProgramID: 1, Name: "Halaqah An-Nur",
		Gender: model.GenderFemale, Active: true, RoomStart: 1,
	}
	env.students.students[20] = model.Student{
		ID: 20, NIS: "2024020", Name: "Santriwati 20",
		Gender: model.GenderFemale, ClassID: 2, Active: true,
	}

	for _, classID := range []int{1, 2} {
		_, err := env.svc.Generate(ctx, classID, testDate(), &model.GenerateCompanionsRequest{
			Grouping: model.GroupingPairs, Algorithm: model.AlgorithmRandom,
		})
		require.NoError(t, err)
	}

	report, err := env.svc.AutoPublishDue(ctx, testDate().AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Equal(t, 2, report.Due)
	require.Equal(t, 1, report.Published)
	require.Equal(t, 1, report.Failed)

	day, err := env.days.GetByClassAndDate(ctx, 1, testDate())
	require.NoError(t, err)
	require.True(t, day.Published())
}
