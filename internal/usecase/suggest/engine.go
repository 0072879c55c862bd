package suggest

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"sticker-radar/internal/domain"
)

// RecentWindow ограничивает окно ленты, которое видит движок.
const RecentWindow = 10

// Фиксированная таблица оценок. Движок никогда не интерполирует между ними.
const (
	ScoreGo      = 0.85
	ScoreGather  = 0.5
	ScoreNoMatch = 0.3
	ScoreQuiet   = 0.1
)

// Фиксированные метки времени для кандидатов.
const (
	candidateTimeFirst  = "18:00–"
	candidateTimeSecond = "19:30–"
)

var (
	reasonsGather = []string{
		"There is movement, but nothing conclusive yet",
		"Keep watching a little longer",
	}
	reasonsNoMatch = []string{
		"Not enough information yet...",
	}
	reasonsQuiet = []string{
		"It's quiet out there right now...",
		"Wait for more reports to come in",
	}
)

// FilterRelevant возвращает подпоследовательность свежих публикаций,
// персонаж которых входит в избранное. Порядок (новые первыми) сохраняется,
// окно ограничено RecentWindow. Публикации без времени считаются самыми старыми.
func FilterRelevant(posts []domain.Post, favorites []string) []domain.Post {
	if len(posts) == 0 || len(favorites) == 0 {
		return nil
	}
	window := make([]domain.Post, len(posts))
	copy(window, posts)
	sort.SliceStable(window, func(i, j int) bool {
		ti, tj := window[i].CreatedAt, window[j].CreatedAt
		if tj == nil {
			return ti != nil
		}
		if ti == nil {
			return false
		}
		return ti.After(*tj)
	})
	if len(window) > RecentWindow {
		window = window[:RecentWindow]
	}
	favSet := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		favSet[f] = struct{}{}
	}
	var relevant []domain.Post
	for _, p := range window {
		if _, ok := favSet[p.Character]; ok {
			relevant = append(relevant, p)
		}
	}
	return relevant
}

// Decide применяет таблицу правил к релевантным публикациям и профилю.
// feedSize задаёт размер окна ленты до фильтрации: пустая лента и "искали, но не
// нашли" дают разные оценки ожидания. Неизвестные статусы не совпадают ни с
// одной веткой и не являются ошибкой.
func Decide(relevant []domain.Post, feedSize int, profile domain.UserProfile) domain.Suggestion {
	if feedSize == 0 {
		return domain.Suggestion{
			Decision:   domain.DecisionWait,
			Score:      ScoreQuiet,
			Reasons:    append([]string(nil), reasonsQuiet...),
			Candidates: []domain.Candidate{},
		}
	}

	decision := domain.DecisionWait
	score := ScoreNoMatch
	reasons := append([]string(nil), reasonsNoMatch...)

	if hasActionable(relevant) {
		decision = domain.DecisionGo
		score = ScoreGo
		latest := relevant[0]
		area := latest.AreaMasked
		if area == "" {
			area = domain.DefaultArea
		}
		reasons = []string{
			fmt.Sprintf("Sighting reported in %s for %s!", area, latest.Character),
			"Stock odds look good based on past patterns",
			"Activity is picking up within your usual range",
		}
	} else if len(relevant) > 0 {
		decision = domain.DecisionGather
		score = ScoreGather
		reasons = append([]string(nil), reasonsGather...)
	}

	return domain.Suggestion{
		Decision:   decision,
		Score:      score,
		Reasons:    reasons,
		Candidates: buildCandidates(decision, score, profile),
	}
}

func hasActionable(relevant []domain.Post) bool {
	for _, p := range relevant {
		if p.Status == domain.StatusBought || p.Status == domain.StatusSeen {
			return true
		}
	}
	return false
}

func buildCandidates(decision string, score float64, profile domain.UserProfile) []domain.Candidate {
	if decision == domain.DecisionWait {
		return []domain.Candidate{}
	}
	area := profile.Area
	if area == "" {
		area = domain.DefaultArea
	}
	return []domain.Candidate{
		{Area: area, Time: candidateTimeFirst, Prob: int(math.Floor(score * 100))},
		{Area: domain.AlternateArea, Time: candidateTimeSecond, Prob: int(math.Floor(score * 80))},
	}
}

// NextWindow ищет ближайшее окно свободного времени. Если на сегодня слоты
// есть, возвращает их, иначе фиксированную заглушку "суббота, после обеда".
// Просмотра остальных дней недели намеренно нет. Отсутствующее расписание
// даёт nil.
func NextWindow(profile domain.UserProfile, today time.Time) *domain.AvailabilityWindow {
	if profile.Availability == nil {
		return nil
	}
	key := strconv.Itoa(int(today.Weekday()))
	if slots := profile.Availability[key]; len(slots) > 0 {
		return &domain.AvailabilityWindow{Day: "today", Slots: append([]string(nil), slots...)}
	}
	return &domain.AvailabilityWindow{Day: "Saturday", Slots: []string{"afternoon"}}
}

// IsAvailable сообщает, есть ли у пользователя хотя бы один слот в этот день.
func IsAvailable(date time.Time, profile domain.UserProfile) bool {
	if profile.Availability == nil {
		return false
	}
	key := strconv.Itoa(int(date.Weekday()))
	return len(profile.Availability[key]) > 0
}
