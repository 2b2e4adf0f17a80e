package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
)

var (
	ErrNoActivities      = errors.New("at least one activity is required")
	ErrInvalidHorizon    = errors.New("horizon must cover at least one day")
	ErrUnknownSpecialist = errors.New("activity references an unknown specialist")
	ErrUnknownEquipment  = errors.New("activity references unknown equipment")
	ErrUnknownBackup     = errors.New("backup chain references an unknown activity")
)

// Difficulty weights used to order occurrences hardest-first.
const (
	difficultyPriorityWeight   = 100
	difficultySpecialistWeight = 50
	difficultyEquipmentWeight  = 30
	difficultyWindowWeight     = 40
)

type placementScope int

const (
	// scopeNarrow restricts candidates to the frequency's target date,
	// plus one day of flex either side for non-daily patterns.
	scopeNarrow placementScope = iota
	// scopeWide enumerates the occurrence's whole week block: liquid
	// scheduling for weekly and monthly patterns whose preferred day got
	// locked out by earlier placements.
	scopeWide
)

// paletteTimes are the start times tried for activities without a time
// window.
var paletteTimes = []domain.ClockTime{
	domain.MustClockTime(7, 0),
	domain.MustClockTime(9, 0),
	domain.MustClockTime(12, 0),
	domain.MustClockTime(17, 0),
	domain.MustClockTime(19, 0),
	domain.MustClockTime(22, 0),
}

// windowStepMinutes is the candidate stride inside a time window.
const windowStepMinutes = 30

// SchedulerConfig caps how much of a single day each priority tier may
// claim through the non-backup path.
type SchedulerConfig struct {
	MaxDailySlots  int
	PriorityQuotas map[int]float64
}

// DefaultSchedulerConfig returns the standard daily capacity and quotas.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxDailySlots: 10,
		PriorityQuotas: map[int]float64{
			1: 1.00,
			2: 0.80,
			3: 0.60,
			4: 0.50,
			5: 0.40,
		},
	}
}

// SchedulerInput bundles the demand, supply, and horizon for one run.
type SchedulerInput struct {
	Activities    []*domain.Activity
	Specialists   []*domain.Specialist
	Equipment     []*domain.Equipment
	TravelPeriods []*domain.TravelPeriod

	StartDate    time.Time
	DurationDays int

	// BackupLookup supplies activities referenced only as backups, keyed
	// by id. Primaries are resolvable as backups too.
	BackupLookup map[string]*domain.Activity
}

// Scheduler is the placement engine: a deterministic greedy constructor
// that expands activities into occurrences, processes them hardest-first,
// and commits the best-scoring feasible slot for each. When a primary
// cannot be placed its fallback chain is attempted, and weekly or monthly
// occurrences get a final wide-scope retry.
type Scheduler struct {
	config SchedulerConfig
	logger *slog.Logger

	activities   []*domain.Activity
	startDate    time.Time
	endDate      time.Time
	durationDays int

	checker *ConstraintChecker
	scorer  *SlotScorer
	plan    *domain.Plan

	activityMap map[string]*domain.Activity
	dailyLoad   map[string]map[int]int
}

// occurrence is one concrete instance of a recurring activity, demanding
// exactly one slot.
type occurrence struct {
	activity   *domain.Activity
	index      int
	difficulty int
}

// candidate is a (date, time) pair under evaluation.
type candidate struct {
	date  time.Time
	start domain.ClockTime
}

// scoredCandidate is a feasible candidate with its quality grade.
type scoredCandidate struct {
	score float64
	candidate
}

// NewScheduler validates the input references and prepares a run.
func NewScheduler(input SchedulerInput, config SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	if len(input.Activities) == 0 {
		return nil, ErrNoActivities
	}
	if input.DurationDays < 1 {
		return nil, ErrInvalidHorizon
	}
	if logger == nil {
		logger = slog.Default()
	}

	activityMap := make(map[string]*domain.Activity, len(input.Activities)+len(input.BackupLookup))
	for _, a := range input.Activities {
		activityMap[a.ID()] = a
	}
	for id, a := range input.BackupLookup {
		activityMap[id] = a
	}

	checker := NewConstraintChecker(input.Specialists, input.Equipment, input.TravelPeriods)
	if err := validateReferences(input, activityMap); err != nil {
		return nil, err
	}

	startDate := domain.DateOf(input.StartDate)

	return &Scheduler{
		config:       config,
		logger:       logger,
		activities:   input.Activities,
		startDate:    startDate,
		endDate:      startDate.AddDate(0, 0, input.DurationDays-1),
		durationDays: input.DurationDays,
		checker:      checker,
		scorer:       NewSlotScorer(),
		plan:         domain.NewPlan(),
		activityMap:  activityMap,
		dailyLoad:    make(map[string]map[int]int),
	}, nil
}

// validateReferences fails loudly on dangling resource or backup ids so the
// run itself never has to.
func validateReferences(input SchedulerInput, activityMap map[string]*domain.Activity) error {
	specialists := make(map[string]bool, len(input.Specialists))
	for _, s := range input.Specialists {
		specialists[s.ID()] = true
	}
	equipment := make(map[string]bool, len(input.Equipment))
	for _, e := range input.Equipment {
		equipment[e.ID()] = true
	}

	for _, a := range activityMap {
		if a.SpecialistID() != "" && !specialists[a.SpecialistID()] {
			return fmt.Errorf("activity %s: specialist %s: %w", a.ID(), a.SpecialistID(), ErrUnknownSpecialist)
		}
		for _, equipID := range a.EquipmentIDs() {
			if !equipment[equipID] {
				return fmt.Errorf("activity %s: equipment %s: %w", a.ID(), equipID, ErrUnknownEquipment)
			}
		}
	}
	for _, a := range input.Activities {
		for _, backupID := range a.BackupActivityIDs() {
			if _, ok := activityMap[backupID]; !ok {
				return fmt.Errorf("activity %s: backup %s: %w", a.ID(), backupID, ErrUnknownBackup)
			}
		}
	}
	return nil
}

// Plan returns the engine's state object.
func (s *Scheduler) Plan() *domain.Plan { return s.plan }

// StartDate returns the first day of the horizon.
func (s *Scheduler) StartDate() time.Time { return s.startDate }

// EndDate returns the last day of the horizon.
func (s *Scheduler) EndDate() time.Time { return s.endDate }

// Run executes the scheduling pass: expand, sort by difficulty, place.
// It is a straight-line single-threaded computation; the context is used
// for logging only.
func (s *Scheduler) Run(ctx context.Context) (*domain.Plan, error) {
	s.logger.InfoContext(ctx, "starting scheduling run",
		"activities", len(s.activities),
		"start", domain.DateKey(s.startDate),
		"days", s.durationDays)

	occurrences := s.expandOccurrences()
	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].difficulty > occurrences[j].difficulty
	})

	for _, occ := range occurrences {
		activity := occ.activity

		placed := s.attemptPlacement(activity, occ.index, false, "", scopeNarrow)

		if !placed && len(activity.BackupActivityIDs()) > 0 {
			placed = s.attemptFallbackChain(ctx, activity, occ.index, scopeNarrow)
		}

		pattern := activity.Frequency().Pattern()
		if !placed && (pattern == domain.PatternWeekly || pattern == domain.PatternMonthly) {
			placed = s.attemptPlacement(activity, occ.index, false, "", scopeWide)
		}

		if !placed {
			s.plan.RecordFailure(activity, domain.ConstraintViolation{
				Kind:       domain.ViolationExhaustion,
				Reason:     "all placement attempts failed",
				ActivityID: activity.ID(),
				Date:       s.startDate,
			})
		}
	}

	stats := s.plan.Statistics()
	s.logger.InfoContext(ctx, "scheduling run finished",
		"booked", stats.TotalSlots,
		"backups", stats.BackupSlots,
		"failed", stats.FailedActivities)

	return s.plan, nil
}

// attemptPlacement evaluates every candidate for one occurrence and commits
// the best-scoring feasible one. Ties go to the earlier candidate in
// enumeration order.
func (s *Scheduler) attemptPlacement(activity *domain.Activity, occIndex int, isBackup bool, originalID string, scope placementScope) bool {
	candidates := s.generateCandidates(activity, occIndex, scope)

	feasible := make([]scoredCandidate, 0)
	for _, cand := range candidates {
		// Backups skip the quota gate: they are a last resort.
		if !isBackup && !s.quotaAllows(cand.date, activity.Priority()) {
			continue
		}

		violation := s.checker.Check(activity, cand.date, cand.start, s.plan.BookedSlots(), isBackup)
		if violation != nil {
			if !isBackup {
				s.plan.RecordFailure(activity, *violation)
			}
			continue
		}

		score := s.scorer.Score(activity, cand.date, cand.start, s.plan.BookedSlots())
		feasible = append(feasible, scoredCandidate{score: score, candidate: cand})
	}

	if len(feasible) == 0 {
		return false
	}

	sort.SliceStable(feasible, func(i, j int) bool {
		return feasible[i].score > feasible[j].score
	})
	best := feasible[0]

	s.commit(activity, best.date, best.start, isBackup, originalID)
	return true
}

// commit builds the slot, books it, and updates the scorer and load table.
func (s *Scheduler) commit(activity *domain.Activity, date time.Time, start domain.ClockTime, isBackup bool, originalID string) {
	slot, err := domain.NewTimeSlot(activity.ID(), activity.Priority(), date, start, activity.DurationMinutes(), activity.PrepMinutes())
	if err != nil {
		// Activity invariants guarantee slot invariants; reaching this
		// means the engine built an impossible slot.
		panic(err)
	}
	if activity.SpecialistID() != "" {
		slot.AssignSpecialist(activity.SpecialistID())
	}
	if len(activity.EquipmentIDs()) > 0 {
		slot.AssignEquipment(activity.EquipmentIDs()...)
	}
	if isBackup {
		if err := slot.MarkAsBackupFor(originalID); err != nil {
			panic(err)
		}
	}

	s.plan.AddBooking(slot)
	s.scorer.RecordBooking(activity, slot)

	key := domain.DateKey(date)
	if s.dailyLoad[key] == nil {
		s.dailyLoad[key] = make(map[int]int)
	}
	s.dailyLoad[key][activity.Priority()]++
}

// attemptFallbackChain walks the backup ids in order and books the first
// one that fits. Chains are walked linearly: a backup's own backups are
// never followed.
func (s *Scheduler) attemptFallbackChain(ctx context.Context, primary *domain.Activity, occIndex int, scope placementScope) bool {
	for _, backupID := range primary.BackupActivityIDs() {
		backup, ok := s.activityMap[backupID]
		if !ok {
			s.logger.WarnContext(ctx, "backup activity not found", "backup_id", backupID, "primary_id", primary.ID())
			continue
		}

		s.logger.InfoContext(ctx, "triggering fallback", "primary", primary.Name(), "backup", backup.Name())

		if s.attemptPlacement(backup, occIndex, true, primary.ID(), scope) {
			return true
		}
	}
	return false
}

// quotaAllows checks the per-priority daily cap for non-backup placements.
func (s *Scheduler) quotaAllows(date time.Time, priority int) bool {
	current := s.dailyLoad[domain.DateKey(date)][priority]
	quota, ok := s.config.PriorityQuotas[priority]
	if !ok {
		quota = 0.1
	}
	limit := float64(s.config.MaxDailySlots) * quota
	return float64(current) < limit
}

// expandOccurrences flattens the frequency patterns into the full list of
// slots to fill, each tagged with a difficulty score so the hardest
// constraints are placed first.
func (s *Scheduler) expandOccurrences() []occurrence {
	occurrences := make([]occurrence, 0)
	for _, activity := range s.activities {
		count := activity.Frequency().RequiredCount(s.durationDays)

		difficulty := (6 - activity.Priority()) * difficultyPriorityWeight
		if activity.SpecialistID() != "" {
			difficulty += difficultySpecialistWeight
		}
		difficulty += difficultyEquipmentWeight * len(activity.EquipmentIDs())
		if activity.HasWindow() {
			difficulty += difficultyWindowWeight
		}

		for i := 0; i < count; i++ {
			occurrences = append(occurrences, occurrence{
				activity:   activity,
				index:      i,
				difficulty: difficulty,
			})
		}
	}
	return occurrences
}

// generateCandidates enumerates (date, time) pairs for one occurrence.
//
// Narrow scope anchors on the frequency's target date, with a one-day flex
// either side for non-daily patterns. Wide scope enumerates the whole
// 7-day block the occurrence belongs to; it deliberately has no extra flex.
func (s *Scheduler) generateCandidates(activity *domain.Activity, index int, scope placementScope) []candidate {
	freq := activity.Frequency()

	if scope == scopeWide {
		var blockStart time.Time
		switch freq.Pattern() {
		case domain.PatternWeekly:
			weekNum := index / freq.Count()
			blockStart = s.startDate.AddDate(0, 0, weekNum*7)
		case domain.PatternMonthly:
			monthNum := index / freq.Count()
			blockStart = s.startDate.AddDate(0, 0, monthNum*30)
		default:
			return nil
		}

		candidates := make([]candidate, 0)
		for d := 0; d < 7; d++ {
			day := blockStart.AddDate(0, 0, d)
			if s.inHorizon(day) {
				candidates = append(candidates, s.timesForDate(activity, day)...)
			}
		}
		return candidates
	}

	targetDate := s.targetDate(freq, index)

	candidates := make([]candidate, 0)
	if s.inHorizon(targetDate) {
		candidates = append(candidates, s.timesForDate(activity, targetDate)...)
	}

	// Daily occurrences are rigid; everything else gets a day of flex
	// either side.
	if freq.Pattern() != domain.PatternDaily {
		prev := targetDate.AddDate(0, 0, -1)
		if s.inHorizon(prev) {
			candidates = append(candidates, s.timesForDate(activity, prev)...)
		}
		next := targetDate.AddDate(0, 0, 1)
		if s.inHorizon(next) {
			candidates = append(candidates, s.timesForDate(activity, next)...)
		}
	}

	return candidates
}

// targetDate computes the ideal date for an occurrence from its frequency.
func (s *Scheduler) targetDate(freq domain.Frequency, index int) time.Time {
	switch freq.Pattern() {
	case domain.PatternDaily:
		return s.startDate.AddDate(0, 0, index)

	case domain.PatternWeekly:
		weekNum := index / freq.Count()
		occurrenceInWeek := index % freq.Count()

		var weekday int
		if preferred := freq.PreferredDays(); len(preferred) > 0 {
			weekday = preferred[occurrenceInWeek%len(preferred)]
		} else {
			// Default spread: Mon, Wed, Fri, ...
			weekday = (occurrenceInWeek * 2) % 7
		}

		weekStart := s.startDate.AddDate(0, 0, weekNum*7)
		offset := (weekday - domain.WeekdayIndex(weekStart) + 7) % 7
		return weekStart.AddDate(0, 0, offset)

	case domain.PatternMonthly:
		monthNum := index / freq.Count()
		return s.startDate.AddDate(0, 0, monthNum*30)

	default: // Custom
		return s.startDate.AddDate(0, 0, index*freq.IntervalDays())
	}
}

// timesForDate emits start times for one date: every 30 minutes through the
// activity's window if it has one, otherwise the fixed palette.
func (s *Scheduler) timesForDate(activity *domain.Activity, date time.Time) []candidate {
	candidates := make([]candidate, 0)

	if window, ok := activity.Window(); ok {
		for m := window.Start().Minutes(); m <= window.End().Minutes(); m += windowStepMinutes {
			if m+activity.DurationMinutes() > window.End().Minutes() {
				continue
			}
			start, err := domain.ClockTimeFromMinutes(m)
			if err != nil {
				continue
			}
			candidates = append(candidates, candidate{date: date, start: start})
		}
		return candidates
	}

	for _, start := range paletteTimes {
		candidates = append(candidates, candidate{date: date, start: start})
	}
	return candidates
}

func (s *Scheduler) inHorizon(date time.Time) bool {
	return !date.Before(s.startDate) && !date.After(s.endDate)
}
