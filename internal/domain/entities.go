package domain

import (
	"fmt"
	"time"
)

// Characters перечисляет персонажей, доступных для избранного.
var Characters = []string{"AngelBlue", "MaisonPiano", "DaisyLovers", "Pomponette", "BlueCross"}

// StickerTypes перечисляет варианты наклеек.
var StickerTypes = []string{"BonbonDrop", "PetitDrop", "TileSeal", "Normal"}

// Areas перечисляет огрублённые районы. Точных координат в системе нет.
var Areas = []string{"Shinjuku", "Shibuya", "Ikebukuro", "Tokyo", "Yokohama", "Omiya"}

// Slots перечисляет допустимые метки времени в течение дня.
var Slots = []string{"morning", "afternoon", "evening", "night"}

// DefaultArea подставляется в кандидаты, когда район в профиле не задан.
const DefaultArea = "Shinjuku"

// AlternateArea всегда подставляется вторым кандидатом.
const AlternateArea = "Ikebukuro"

// Статусы сообщений сообщества.
const (
	StatusSeen    = "seen"
	StatusBought  = "bought"
	StatusSoldout = "soldout"
)

// Категории решения движка.
const (
	DecisionGo     = "go"
	DecisionGather = "gather"
	DecisionWait   = "wait"
)

// UserProfile хранит анкету пользователя после онбординга.
type UserProfile struct {
	UserID    int64    `json:"user_id"`
	Favorites []string `json:"favorites"`
	Area      string   `json:"area"`
	// Availability: ключ это день недели "0".."6" (0 воскресенье),
	// значение это метки слотов в порядке добавления.
	Availability map[string][]string `json:"availability"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Post представляет одно сообщение сообщества о наклейке.
type Post struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"user_id"`
	Text        string     `json:"text"`
	Status      string     `json:"status"`
	Character   string     `json:"character"`
	StickerType string     `json:"sticker_type"`
	AreaMasked  string     `json:"area_masked"`
	CreatedAt   *time.Time `json:"created_at"`
}

// PostDraft описывает новую публикацию до присвоения ID и времени.
type PostDraft struct {
	UserID      int64  `json:"user_id"`
	Text        string `json:"text"`
	Status      string `json:"status"`
	Character   string `json:"character"`
	StickerType string `json:"sticker_type"`
	AreaMasked  string `json:"area_masked"`
}

// Candidate описывает рекомендованную пару район/время с оценкой вероятности.
type Candidate struct {
	Area string `json:"area"`
	Time string `json:"time"`
	Prob int    `json:"prob"`
}

// Suggestion содержит результат работы движка решений.
type Suggestion struct {
	Decision   string      `json:"decision"`
	Score      float64     `json:"score"`
	Reasons    []string    `json:"reasons"`
	Candidates []Candidate `json:"candidates"`
}

// AvailabilityWindow описывает ближайшее окно свободного времени.
type AvailabilityWindow struct {
	Day   string   `json:"day"`
	Slots []string `json:"slots"`
}

// NotifyJob описывает задачу на отправку пинга.
type NotifyJob struct {
	UserID    int64     `json:"user_id"`
	PostID    string    `json:"post_id"`
	Character string    `json:"character"`
	Area      string    `json:"area"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidCharacter сообщает, входит ли персонаж в словарь.
func ValidCharacter(name string) bool { return contains(Characters, name) }

// ValidStickerType сообщает, входит ли вариант наклейки в словарь.
func ValidStickerType(name string) bool { return contains(StickerTypes, name) }

// ValidArea сообщает, входит ли район в словарь.
func ValidArea(name string) bool { return contains(Areas, name) }

// ValidSlot сообщает, входит ли метка слота в словарь.
func ValidSlot(name string) bool { return contains(Slots, name) }

// ValidStatus сообщает, является ли значение одним из трёх статусов.
func ValidStatus(s string) bool {
	return s == StatusSeen || s == StatusBought || s == StatusSoldout
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// RelativeTime форматирует давность события для текста уведомления.
func RelativeTime(t *time.Time, now time.Time) string {
	if t == nil {
		return ""
	}
	diff := now.Sub(*t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%d/%d %02d:%02d", int(t.Month()), t.Day(), t.Hour(), t.Minute())
	}
}
