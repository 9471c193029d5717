// Package export はイベントデータの外部出力（CSV名簿、iCalendar、共有リンク）を提供する。
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

// rosterDateFormat はCSV内の日時表記。
const rosterDateFormat = "January 02, 2006 at 03:04 PM"

// nonSlugChars はファイル名スラグで置き換える文字。
var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// RosterCSV はイベントの参加者名簿をCSVとして組み立てる。
//
// 2セクション構成：イベント詳細、空行、参加登録一覧。
// 参加登録は保存順のまま出力する。
func RosterCSV(event *model.Event, signups []repository.SignupWithAccount) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Event Details"},
		{"Title", event.Title},
		{"Date", event.EventDate.Format(rosterDateFormat)},
		{"Category", string(event.Category)},
		{"Location", event.Location},
		{"Description", event.Description},
		{},
		{"Signups"},
		{"Name", "Email", "Signed Up At"},
	}

	for _, s := range signups {
		records = append(records, []string{
			s.FullName,
			s.Email,
			s.Signup.CreatedAt.Format(rosterDateFormat),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write roster CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// RosterFilename は名簿CSVのダウンロードファイル名を組み立てる。
// タイトルをスラグ化し、エクスポート実行日をYYYYMMDDで添える。
func RosterFilename(event *model.Event, now time.Time) string {
	return fmt.Sprintf("%s_signups_%s.csv", slugify(event.Title), now.Format("20060102"))
}

// slugify はタイトルをファイル名に安全な小文字スラグに変換する。
// 英数字以外の連続はアンダースコア1つにまとめる。
func slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "event"
	}
	return slug
}
