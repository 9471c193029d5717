// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category はイベントの種別を表す。
type Category string

const (
	// CategoryService は奉仕活動イベント。
	CategoryService Category = "Service"
	// CategoryBushSchool はブッシュスクールイベント。
	CategoryBushSchool Category = "Bush School"
	// CategorySocial は交流イベント。
	CategorySocial Category = "Social"
)

// Categories は選択可能な全カテゴリ。
var Categories = []Category{CategoryService, CategoryBushSchool, CategorySocial}

// Valid はカテゴリが定義済みの値であるかを返す。
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Event はメンバーが閲覧・参加登録できる予定されたアクティビティを表す。
type Event struct {
	ID          string
	Title       string
	EventDate   time.Time
	Description string
	Location    string
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate はイベントの不変条件を検証する。
// 作成時・更新時の両方で呼ばれ、保存のたびに日付境界を現在時刻に対して再評価する。
// 違反がある場合はValidationErrorsを返し、なければnilを返す。
func (e *Event) Validate(now time.Time) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(e.Title) == "" {
		errs.Add("title", "can't be blank")
	}
	if strings.TrimSpace(e.Description) == "" {
		errs.Add("description", "can't be blank")
	}
	if e.Category == "" {
		errs.Add("category", "can't be blank")
	} else if !e.Category.Valid() {
		errs.Add("category", "is not included in the list")
	}
	if e.EventDate.IsZero() {
		errs.Add("event_date", "can't be blank")
	} else if msg := validateEventDate(e.EventDate, now); msg != "" {
		errs.Add("event_date", msg)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateEventDate は日付のみの比較で過去境界を検証する。
//
// datetime-local入力はタイムゾーン情報を持たず利用者のローカル時刻を表すため、
// サーバーとのタイムゾーン差で時刻比較が破綻することがある。
// 暦日単位で比較し、サーバー日付の前日以降を許容することでUTC後方の
// タイムゾーン利用者が「今日」のイベントを作成できるようにしている。
// 2日以上過去の日付のみを拒否する。
func validateEventDate(eventDate, now time.Time) string {
	eventDay := truncateToDate(eventDate)
	yesterday := truncateToDate(now).AddDate(0, 0, -1)

	if !eventDay.Before(yesterday) {
		return ""
	}

	return fmt.Sprintf(
		"must be from yesterday onwards. Selected date (%s) is too far in the past.",
		eventDay.Format("January 02, 2006"),
	)
}

// IsPast はイベントの開催時刻が現在より厳密に過去であるかを返す。
// 参加登録・フィードバックの適格性判定用で、日付単位ではなく時刻そのもので比較する。
func (e *Event) IsPast(now time.Time) bool {
	return e.EventDate.Before(now)
}

// truncateToDate は時刻成分を落とし、その暦日の0時を返す。
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
