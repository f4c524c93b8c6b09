package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tahfidzid/mutqin-backend/internal/config"
	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/notifier"
	"github.com/tahfidzid/mutqin-backend/internal/pairing"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
)

// Domain errors. ErrAlreadyPublished and ErrCompanionDayExists from the
// repository pass through unchanged so handlers can branch on conflicts.
var (
	ErrNotPublished         = errors.New("companion day is not published yet")
	ErrStudentNotAssigned   = errors.New("student is not assigned to any room for this date")
	ErrClassInactive        = errors.New("class is inactive")
	ErrInsufficientStudents = errors.New("fewer than 2 eligible students")
)

// msgInsufficientStudents is returned (not raised) when a class cannot form a
// single group. Expected business state for small or depleted classes.
const msgInsufficientStudents = "Santri yang memenuhi syarat kurang dari 2 orang, pembagian teman muraja'ah tidak dibuat."

// payloadCacheTTL bounds how long a published day's room payload stays in
// Redis. Published days are immutable, so a long TTL is safe.
const payloadCacheTTL = 48 * time.Hour

// ClassStore is the class directory lookup the engine consumes.
type ClassStore interface {
	GetByID(ctx context.Context, id int) (*model.Class, error)
}

// StudentStore is the student directory lookup the engine consumes.
type StudentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]model.Student, error)
	ListEligibleIDs(ctx context.Context, classID int, gender model.Gender) ([]int, error)
}

// DailyLogStore is the attendance source the eligibility filter consumes.
type DailyLogStore interface {
	VerifiedCounts(ctx context.Context, classID int, from, to time.Time) (map[int]int, error)
}

// CompanionDayStore is the companion day persistence contract.
type CompanionDayStore interface {
	Create(ctx context.Context, d *model.CompanionDay) error
	GetByClassAndDate(ctx context.Context, classID int, date time.Time) (*model.CompanionDay, error)
	SaveDraft(ctx context.Context, d *model.CompanionDay) error
	MarkPublished(ctx context.Context, id uuid.UUID, pairings [][]int, rooms map[int][]int,
		linkSnapshot, passwordSnapshot *string, publishedBy *int, autoPublished bool) (time.Time, error)
	LatestPublishedBefore(ctx context.Context, classID int, date time.Time) ([][]int, error)
	ListDueDrafts(ctx context.Context, date time.Time) ([]model.CompanionDay, error)
}

// CompanionsService owns the companions pairing engine: eligibility,
// grouping, the draft/published lifecycle, notification fan-out and the
// auto-publish batch.
type CompanionsService struct {
	cfg       *config.Config
	classes   ClassStore
	students  StudentStore
	logs      DailyLogStore
	days      CompanionDayStore
	transport notifier.Transport
	rdb       *redis.Client // optional: payload cache + publish events
	log       zerolog.Logger
	newRNG    func() *rand.Rand
}

// NewCompanionsService creates a new CompanionsService. rdb may be nil in
// tests; caching and event publishing are then skipped.
func NewCompanionsService(
	cfg *config.Config,
	classes ClassStore,
	students StudentStore,
	logs DailyLogStore,
	days CompanionDayStore,
	transport notifier.Transport,
	rdb *redis.Client,
	log zerolog.Logger,
) *CompanionsService {
	return &CompanionsService{
		cfg:       cfg,
		classes:   classes,
		students:  students,
		logs:      logs,
		days:      days,
		transport: transport,
		rdb:       rdb,
		log:       log.With().Str("component", "companions_service").Logger(),
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
		},
	}
}

// GenerateResult carries a generation outcome. Message is non-empty only for
// the soft insufficient-students case, in which Groups is empty.
type GenerateResult struct {
	Day     *model.CompanionDay `json:"day"`
	Groups  [][]int             `json:"groups"`
	Message string              `json:"message,omitempty"`
}

// eligibleStudents computes the ordered eligible set for one class and date.
// "all" takes every active, gender-matching member; "committed_only" keeps
// those whose verified-log ratio over the trailing window meets the
// configured minimum rate.
func (s *CompanionsService) eligibleStudents(ctx context.Context, class *model.Class, date time.Time, source model.AttendanceSource) ([]int, error) {
	ids, err := s.students.ListEligibleIDs(ctx, class.ID, class.Gender)
	if err != nil {
		return nil, fmt.Errorf("list class members: %w", err)
	}
	if source != model.AttendanceCommittedOnly {
		return ids, nil
	}

	window := s.cfg.AttendanceWindowDays
	from := date.AddDate(0, 0, -window)
	counts, err := s.logs.VerifiedCounts(ctx, class.ID, from, date)
	if err != nil {
		return nil, fmt.Errorf("verified counts: %w", err)
	}

	committed := make([]int, 0, len(ids))
	for _, id := range ids {
		rate := float64(counts[id]) / float64(window)
		if rate >= s.cfg.MinCommitmentRate {
			committed = append(committed, id)
		}
	}
	return committed, nil
}

// getOrCreateDraft loads the day for (class, date) or creates one with the
// given configuration. A lost creation race falls back to the winner's row.
func (s *CompanionsService) getOrCreateDraft(ctx context.Context, classID int, date time.Time, grouping model.Grouping, algorithm model.Algorithm, source model.AttendanceSource) (*model.CompanionDay, error) {
	day, err := s.days.GetByClassAndDate(ctx, classID, date)
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, repository.ErrCompanionDayNotFound) {
		return nil, fmt.Errorf("get companion day: %w", err)
	}

	day = &model.CompanionDay{
		ClassID:          classID,
		TargetDate:       date,
		Grouping:         grouping,
		Algorithm:        algorithm,
		AttendanceSource: source,
	}
	if err := s.days.Create(ctx, day); err != nil {
		if errors.Is(err, repository.ErrCompanionDayExists) {
			return s.days.GetByClassAndDate(ctx, classID, date)
		}
		return nil, fmt.Errorf("create companion day: %w", err)
	}
	return day, nil
}

// Generate runs the grouping engine for (class, date) and stores the result
// on the draft. Repeatable while in Draft; rejected once published.
func (s *CompanionsService) Generate(ctx context.Context, classID int, date time.Time, req *model.GenerateCompanionsRequest) (*GenerateResult, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if !class.Active {
		return nil, ErrClassInactive
	}

	source := req.AttendanceSource
	if source == "" {
		source = model.AttendanceAll
	}

	day, err := s.getOrCreateDraft(ctx, classID, date, req.Grouping, req.Algorithm, source)
	if err != nil {
		return nil, err
	}
	if day.Published() {
		return nil, repository.ErrAlreadyPublished
	}

	day.Grouping = req.Grouping
	day.Algorithm = req.Algorithm
	day.AttendanceSource = source
	if req.LockedGroups != nil {
		day.LockedGroups = req.LockedGroups
	}

	groups, message, err := s.generateGroups(ctx, class, day)
	if err != nil {
		return nil, err
	}

	day.Pairings = groups
	if err := s.days.SaveDraft(ctx, day); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	s.log.Info().
		Int("class_id", classID).
		Str("date", date.Format("2006-01-02")).
		Str("algorithm", string(day.Algorithm)).
		Int("groups", len(groups)).
		Msg("Pairings generated")

	return &GenerateResult{Day: day, Groups: groups, Message: message}, nil
}

// generateGroups runs eligibility, locked-group validation and the grouping
// algorithm for a day's stored configuration. It mutates nothing; callers
// persist the result. An insufficient pool yields empty groups plus the info
// message, never an error.
func (s *CompanionsService) generateGroups(ctx context.Context, class *model.Class, day *model.CompanionDay) ([][]int, string, error) {
	eligible, err := s.eligibleStudents(ctx, class, day.TargetDate, day.AttendanceSource)
	if err != nil {
		return nil, "", err
	}
	if len(eligible) < 2 {
		return [][]int{}, msgInsufficientStudents, nil
	}

	if len(day.LockedGroups) > 0 {
		var lockedIDs []int
		for _, g := range day.LockedGroups {
			lockedIDs = append(lockedIDs, g...)
		}
		directory, err := s.students.GetByIDs(ctx, lockedIDs)
		if err != nil {
			return nil, "", fmt.Errorf("resolve locked members: %w", err)
		}
		if err := pairing.ValidateLockedGroups(day.LockedGroups, day.Grouping, class, directory); err != nil {
			return nil, "", err
		}
	}

	var previous [][]int
	if day.Algorithm == model.AlgorithmRotation {
		previous, err = s.days.LatestPublishedBefore(ctx, class.ID, day.TargetDate)
		if err != nil {
			return nil, "", fmt.Errorf("rotation history: %w", err)
		}
	}

	groups := pairing.BuildGroups(eligible, day.LockedGroups, day.Grouping, day.Algorithm, previous, s.newRNG())
	return groups, "", nil
}

// Lock merges caller-pinned groups into a draft's configuration. It never
// touches the stored pairings; the next Generate or a lazy Publish picks the
// locks up.
func (s *CompanionsService) Lock(ctx context.Context, classID int, date time.Time, locked [][]int) (*model.CompanionDay, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	day, err := s.getOrCreateDraft(ctx, classID, date, model.GroupingPairs, model.AlgorithmRandom, model.AttendanceAll)
	if err != nil {
		return nil, err
	}
	if day.Published() {
		return nil, repository.ErrAlreadyPublished
	}

	var lockedIDs []int
	for _, g := range locked {
		lockedIDs = append(lockedIDs, g...)
	}
	directory, err := s.students.GetByIDs(ctx, lockedIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve locked members: %w", err)
	}
	if err := pairing.ValidateLockedGroups(locked, day.Grouping, class, directory); err != nil {
		return nil, err
	}

	day.LockedGroups = locked
	if err := s.days.SaveDraft(ctx, day); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return day, nil
}

// PreviewRooms exposes the pure room assignment for dry runs.
func (s *CompanionsService) PreviewRooms(groups [][]int, startRoom int) map[int][]int {
	return pairing.AssignRooms(groups, startRoom)
}

// Publish performs the one-way Draft → Published transition:
// lazy generation if the draft has no pairings, room assignment, meeting
// snapshot and the published_at compare-and-swap. Only after the timestamp
// is durably committed do notification fan-out and cache warm run.
// A second call returns repository.ErrAlreadyPublished and changes nothing.
func (s *CompanionsService) Publish(ctx context.Context, classID int, date time.Time, publishedBy *int, autoPublished bool) (*model.CompanionDay, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	day, err := s.days.GetByClassAndDate(ctx, classID, date)
	if err != nil {
		return nil, err
	}
	if day.Published() {
		return nil, repository.ErrAlreadyPublished
	}

	pairings := day.Pairings
	if len(pairings) == 0 {
		groups, message, err := s.generateGroups(ctx, class, day)
		if err != nil {
			return nil, err
		}
		if message != "" {
			return nil, ErrInsufficientStudents
		}
		pairings = groups
	}

	rooms := pairing.AssignRooms(pairings, class.RoomStart)

	publishedAt, err := s.days.MarkPublished(ctx, day.ID, pairings, rooms,
		class.MeetingLink, class.MeetingPassword, publishedBy, autoPublished)
	if err != nil {
		return nil, err
	}

	day.Pairings = pairings
	day.RoomAssignments = rooms
	day.LinkSnapshot = class.MeetingLink
	day.PasswordSnapshot = class.MeetingPassword
	day.PublishedAt = &publishedAt
	day.PublishedBy = publishedBy
	day.AutoPublished = autoPublished

	s.log.Info().
		Int("class_id", classID).
		Str("date", date.Format("2006-01-02")).
		Int("rooms", len(rooms)).
		Bool("auto", autoPublished).
		Msg("Companion day published")

	// Post-commit side effects. None of these may fail the publish.
	s.fanOut(ctx, day)
	s.warmPayloadCache(ctx, day)
	s.announcePublish(ctx, day)

	return day, nil
}

// fanOut dispatches one notification per student of every room. Per-student
// dispatch failures are logged and counted, never escalated.
func (s *CompanionsService) fanOut(ctx context.Context, day *model.CompanionDay) {
	var all []int
	for _, group := range day.RoomAssignments {
		all = append(all, group...)
	}
	directory, err := s.students.GetByIDs(ctx, all)
	if err != nil {
		s.log.Error().Err(err).Int("class_id", day.ClassID).Msg("Fan-out aborted: resolve students")
		return
	}

	sent, failed := 0, 0
	for room, group := range day.RoomAssignments {
		for _, studentID := range group {
			companions := make([]string, 0, len(group)-1)
			for _, other := range group {
				if other == studentID {
					continue
				}
				companions = append(companions, directory[other].Name)
			}

			msg := notifier.BuildMessage(companions, room, day.LinkSnapshot, day.PasswordSnapshot)
			if err := s.transport.Send(ctx, studentID, notifier.DefaultTitle, msg, s.cfg.NotifyChannel); err != nil {
				failed++
				s.log.Warn().Err(err).Int("student_id", studentID).Msg("Notification dispatch failed")
				continue
			}
			sent++
		}
	}

	s.log.Info().
		Int("class_id", day.ClassID).
		Int("sent", sent).
		Int("failed", failed).
		Msg("Fan-out complete")
}

// buildPayload resolves a published day into its display view, rooms in
// ascending order.
func (s *CompanionsService) buildPayload(ctx context.Context, day *model.CompanionDay) (*model.CompanionsPayload, error) {
	var all []int
	for _, group := range day.RoomAssignments {
		all = append(all, group...)
	}
	directory, err := s.students.GetByIDs(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("resolve students: %w", err)
	}

	roomNums := make([]int, 0, len(day.RoomAssignments))
	for room := range day.RoomAssignments {
		roomNums = append(roomNums, room)
	}
	slices.Sort(roomNums)

	rooms := make([]model.RoomView, 0, len(roomNums))
	for _, room := range roomNums {
		group := day.RoomAssignments[room]
		members := make([]model.RoomMember, 0, len(group))
		for _, id := range group {
			members = append(members, model.RoomMember{ID: id, Name: directory[id].Name})
		}
		rooms = append(rooms, model.RoomView{Room: room, Members: members})
	}

	return &model.CompanionsPayload{
		ClassID:         day.ClassID,
		TargetDate:      day.TargetDate.Format("2006-01-02"),
		Rooms:           rooms,
		MeetingLink:     day.LinkSnapshot,
		MeetingPassword: day.PasswordSnapshot,
		PublishedAt:     *day.PublishedAt,
		AutoPublished:   day.AutoPublished,
	}, nil
}

// GetAllCompanions returns the full room map of a published day (staff view),
// served from cache when possible.
func (s *CompanionsService) GetAllCompanions(ctx context.Context, classID int, date time.Time) (*model.CompanionsPayload, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, config.CacheKey.CompanionsPayloadKey(classID, date)).Bytes()
		if err == nil {
			payload := &model.CompanionsPayload{}
			if err := json.Unmarshal(raw, payload); err == nil {
				return payload, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("Payload cache read failed")
		}
	}

	day, err := s.days.GetByClassAndDate(ctx, classID, date)
	if err != nil {
		return nil, err
	}
	if !day.Published() {
		return nil, ErrNotPublished
	}

	payload, err := s.buildPayload(ctx, day)
	if err != nil {
		return nil, err
	}
	s.cachePayload(ctx, payload)
	return payload, nil
}

// GetMyCompanions returns one student's room, companion names and meeting
// snapshot for a published day.
func (s *CompanionsService) GetMyCompanions(ctx context.Context, studentID int, date time.Time) (*model.MyCompanionsView, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}

	payload, err := s.GetAllCompanions(ctx, student.ClassID, date)
	if err != nil {
		return nil, err
	}

	for _, room := range payload.Rooms {
		for _, m := range room.Members {
			if m.ID != studentID {
				continue
			}
			companions := make([]string, 0, len(room.Members)-1)
			for _, other := range room.Members {
				if other.ID != studentID {
					companions = append(companions, other.Name)
				}
			}
			return &model.MyCompanionsView{
				Room:            room.Room,
				Companions:      companions,
				MeetingLink:     payload.MeetingLink,
				MeetingPassword: payload.MeetingPassword,
			}, nil
		}
	}
	return nil, ErrStudentNotAssigned
}

// warmPayloadCache builds and caches the display payload right after publish
// so the first student lobby reads never hit PostgreSQL.
func (s *CompanionsService) warmPayloadCache(ctx context.Context, day *model.CompanionDay) {
	if s.rdb == nil {
		return
	}
	payload, err := s.buildPayload(ctx, day)
	if err != nil {
		s.log.Warn().Err(err).Int("class_id", day.ClassID).Msg("Payload cache warm failed")
		return
	}
	s.cachePayload(ctx, payload)
}

func (s *CompanionsService) cachePayload(ctx context.Context, payload *model.CompanionsPayload) {
	if s.rdb == nil {
		return
	}
	date, err := time.Parse("2006-01-02", payload.TargetDate)
	if err != nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	key := config.CacheKey.CompanionsPayloadKey(payload.ClassID, date)
	if err := s.rdb.Set(ctx, key, raw, payloadCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Payload cache write failed")
	}
}

// PublishEvent is broadcast on the Redis PubSub channel after each publish,
// consumed by the staff WebSocket stream.
type PublishEvent struct {
	ClassID       int       `json:"class_id"`
	TargetDate    string    `json:"target_date"`
	Rooms         int       `json:"rooms"`
	AutoPublished bool      `json:"auto_published"`
	PublishedAt   time.Time `json:"published_at"`
}

func (s *CompanionsService) announcePublish(ctx context.Context, day *model.CompanionDay) {
	if s.rdb == nil {
		return
	}
	raw, _ := json.Marshal(PublishEvent{
		ClassID:       day.ClassID,
		TargetDate:    day.TargetDate.Format("2006-01-02"),
		Rooms:         len(day.RoomAssignments),
		AutoPublished: day.AutoPublished,
		PublishedAt:   *day.PublishedAt,
	})
	if err := s.rdb.Publish(ctx, config.CacheKey.PublishEventsChannel(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Publish event broadcast failed")
	}
}

// AutoPublishReport summarizes one auto-publish batch run.
type AutoPublishReport struct {
	TargetDate string `json:"target_date"`
	Due        int    `json:"due"`
	Published  int    `json:"published"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// AutoPublishDue publishes every draft whose target date is runDate plus the
// configured lead time. Classes are processed by a bounded worker pool and
// errors are isolated per class; rows published in the meantime are counted
// as skipped, which also makes re-runs after a crash safe.
func (s *CompanionsService) AutoPublishDue(ctx context.Context, runDate time.Time) (*AutoPublishReport, error) {
	target := truncateToDay(runDate).AddDate(0, 0, s.cfg.PublishLeadDays)

	due, err := s.days.ListDueDrafts(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list due drafts: %w", err)
	}

	report := &AutoPublishReport{TargetDate: target.Format("2006-01-02"), Due: len(due)}
	if len(due) == 0 {
		return report, nil
	}

	workers := s.cfg.SchedulerWorkers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan model.CompanionDay)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for day := range jobs {
				_, err := s.Publish(ctx, day.ClassID, day.TargetDate, nil, true)

				mu.Lock()
				switch {
				case err == nil:
					report.Published++
				case errors.Is(err, repository.ErrAlreadyPublished):
					report.Skipped++
				default:
					report.Failed++
					s.log.Error().Err(err).
						Int("class_id", day.ClassID).
						Str("date", report.TargetDate).
						Msg("Auto-publish failed for class")
				}
				mu.Unlock()
			}
		}()
	}

	for _, day := range due {
		jobs <- day
	}
	close(jobs)
	wg.Wait()

	s.log.Info().
		Str("date", report.TargetDate).
		Int("due", report.Due).
		Int("published", report.Published).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Auto-publish run complete")

	return report, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
